// Package pipeline orchestrates one collection run: portal login, endpoint
// enumeration, paced fetching, normalization, aggregation, and delivery to
// the configured sinks. A failed login aborts the run; every other failure
// degrades to partial data recorded in the result.
package pipeline
