// Package jobqueue sequences multi-phase enrichment work. Jobs move through
// queued, running, and a terminal state; phases run strictly in order within
// a job, and progress fans out through a best-effort broadcast channel.
package jobqueue
