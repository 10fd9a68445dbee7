// Package services holds cross-cutting helpers shared by every source client:
// the sentinel error taxonomy used to classify per-track enrichment outcomes,
// and context annotations that thread job/track/phase identifiers into logs.
package services
