// Package joblog persists per-recording job outcomes in a SQLite ledger so
// batch runs can be inspected and failed subsets retried without touching
// completed work.
package joblog
