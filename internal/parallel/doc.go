// Package parallel runs independent checks with bounded concurrency.
//
// It provides Pool, a worker pool whose results come back in submission
// order regardless of completion order, so callers that fan work out
// (per category, per file) can report deterministically.
package parallel
