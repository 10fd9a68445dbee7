// Package musicdb resolves performer names to canonical artist identities and
// fetches their social/website links from the musicological database API.
package musicdb
