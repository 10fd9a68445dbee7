// Package textutil provides name normalization and matching helpers shared by
// the scoring engine and the musicological database client.
package textutil
