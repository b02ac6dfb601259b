// Package track gives ephemeral engine tags permanent identities and follows
// each entity's lifecycle across frames.
//
// The Tracker maps reusable numeric tags to StableIDs using per-(owner,type)
// sequence counters, classifies per-frame transitions (created, existing,
// destroyed), and commits frame baselines so destruction can be detected from
// absence. The Lifecycle machine adds the four-state construction model for
// buildings: started, building, completed, destroyed, with monotonic progress
// checking.
//
// All state is per job. Identity never leaks across jobs because tag spaces
// are independent between recordings.
package track
