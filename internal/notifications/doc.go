// Package notifications delivers push notifications via ntfy for job
// lifecycle events and hot-lead alerts. When no topic is configured the
// service degrades to a noop so callers never need nil checks.
package notifications
