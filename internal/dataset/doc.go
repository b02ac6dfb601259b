// Package dataset persists extraction results. Arrow IPC is the primary
// format; JSON lines exists for eyeballing small extracts. Schema
// documentation is written alongside the data so consumers do not need this
// codebase to interpret a file.
package dataset
