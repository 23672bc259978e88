// Package executor runs a workflow graph.
//
// A run is a single breadth-first pass driven by a FIFO ready queue. The queue
// is seeded with every trigger in declaration order. Each dequeued node runs at
// most once: an id that was already executed is skipped when it is dequeued, so
// fan-in nodes enqueued once per arriving edge still run a single time. When a
// node succeeds its successors are enqueued in edge declaration order. The
// first failure aborts the whole run and the remaining queue is discarded.
//
// Nodes execute one at a time. The only suspension point is the runner call,
// which receives the caller's context. The loop itself has no cancellation
// check; a cancelled context surfaces as a runner failure.
//
// Every step is reported to a progress.Reporter. The reporter cannot affect the
// run: it is wrapped with progress.Safe, and its return is never consulted.
package executor
