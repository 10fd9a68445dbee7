// Package scheduler owns the three recurring cadences: the weekly-window
// playlist refresh, the daily failed-enrichment retry, and the weekly
// performance snapshot. All three are also directly invocable entry points.
package scheduler
