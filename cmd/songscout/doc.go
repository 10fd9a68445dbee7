// Package main hosts the Songscout CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the long-running enrichment daemon, the
// operator entry points for the recurring jobs, queue and contact inspection,
// vault cookie imports, and configuration scaffolding. It centralizes
// configuration resolution and logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
