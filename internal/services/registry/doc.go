// Package registry looks up authoritative publisher/writer data for a
// recording. The authenticated JSON API is the primary path; the public
// portal scrape is a best-effort fallback governed by a configurable policy.
// Publisher status classification is a pure function over publisher names.
package registry
