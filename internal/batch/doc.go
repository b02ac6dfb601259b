// Package batch fans extraction jobs out over a bounded worker pool. Jobs
// are fully isolated from each other and results come back in submission
// order, so batch output is stable regardless of scheduling.
package batch
