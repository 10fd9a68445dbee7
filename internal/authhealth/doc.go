// Package authhealth tracks the health of the browser scraping session. Every
// session-bound navigation records its outcome here; the monitor persists the
// record as JSON so health survives restarts.
package authhealth
