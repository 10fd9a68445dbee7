// Package enrich holds the phase executors. Each phase calls one external
// source, persists per-track results with a terminal status, and contains
// failures to the track that raised them.
package enrich
