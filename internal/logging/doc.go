// Package logging configures slog output for the daemon and CLI.
//
// It provides a console handler that renders compact single-line records, a
// JSON handler for machine consumption, attr helpers shared across packages,
// and standardized field names so job/track/phase identifiers appear with
// consistent keys everywhere.
package logging
