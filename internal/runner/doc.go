package runner

// Package runner implements the rate-limited, concurrency-bounded task
// executor behind every batched fetch in the app. Run executes a fixed
// batch; Queue accepts keys incrementally with duplicate suppression for
// visibility-triggered loading. Both cap in-flight workers and space
// worker launches by a minimum interval.
