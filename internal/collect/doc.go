// Package collect enumerates the endpoint calls for one analysis and
// executes them sequentially against the portal. Enumeration is a pure
// function over the category table; execution paces calls, follows
// pagination as long as pages arrive full, and converts every failure into
// a recorded result instead of aborting the batch.
package collect
