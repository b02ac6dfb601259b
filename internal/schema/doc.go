// Package schema builds the wide-table column registry for a dataset job.
//
// Columns are discovered from tracked entities and registered append-only;
// names are deterministic functions of owner, type, stable sequence, and
// attribute, so two runs over the same input agree byte for byte. Every
// column carries a missing-value marker (NaN, null, or zero) that row
// projection uses to initialize cells before observations land.
package schema
