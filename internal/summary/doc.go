// Package summary folds normalized records into per-category counts and
// derived totals for the compact downstream payloads.
package summary
