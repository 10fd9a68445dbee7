// Package scoring turns enrichment results into bounded opportunity scores.
// Both rubrics are pure functions with no I/O; callers persist the results.
package scoring
