// Package app contains the core application logic. It wires workflow sources,
// the node runner registry, progress reporters, execution history and
// telemetry around the executor, decoupled from any specific entrypoint like
// a CLI or server.
package app
