// Package services defines shared utilities consumed by the extraction
// pipeline and batch coordinator.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and source paths for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (decode, validation, configuration, not-found, transient) so the job
//     ledger can decide what is worth retrying.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// stays uniform across jobs.
package services
