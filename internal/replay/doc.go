// Package replay defines the observation data model the extraction pipeline
// consumes and the Decoder boundary that produces it.
//
// Decoding the proprietary replay container is an external concern; this
// package only fixes the shapes that cross the boundary: per-frame entity
// snapshots with ephemeral tags, explicit destroyed-tag sets, lower-frequency
// per-owner economy aggregates, and chat messages. JSONDecoder reads the
// observation manifests an upstream decoder emits. The type catalog
// classifies raw type codes into units, buildings, and neutral map objects.
package replay
