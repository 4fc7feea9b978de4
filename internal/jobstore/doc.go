// Package jobstore tracks collection jobs across their lifecycle. The
// pipeline depends only on the Store interface; deployments choose the
// SQLite-backed store for durability or the in-memory store for tests and
// single-shot runs. Jobs expire after a retention window instead of
// accumulating forever.
package jobstore
