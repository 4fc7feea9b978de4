// Package logging builds the slog loggers used across the collector.
//
// Two output formats are supported: a compact console handler that renders
// key=value pairs after the message, and a JSON handler for machine-readable
// logs. Output can be mirrored to a file under the configured log directory
// in addition to stdout.
//
// Construct loggers through New or NewFromConfig so every component shares
// the same level parsing and attribute formatting.
package logging
