// Package webhook delivers the flattened collection payload to a
// workflow-automation webhook. The payload shape, including the numbered
// disease field groups and the five-record cutoff, is an external contract
// and must not change. Delivery failures are retried with a fixed delay and
// reported as a structured result rather than an error.
package webhook
