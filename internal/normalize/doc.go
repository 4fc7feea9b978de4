// Package normalize flattens classified endpoint responses into uniform
// disease/treatment records. Items without a disease code are dropped, and
// a single dedup pass across the whole batch collapses the same treatment
// episode surfacing through overlapping category queries.
package normalize
