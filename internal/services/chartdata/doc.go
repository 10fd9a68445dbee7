// Package chartdata fills streaming performance metrics (stream counts,
// followers, week-over-week growth) from the charting/analytics API.
package chartdata
