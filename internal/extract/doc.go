// Package extract runs the per-recording pipeline: decode frames, resolve
// stable identities, fold construction lifecycles, grow the column registry,
// and materialize wide-table rows. All state is scoped to a single run, so
// concurrent jobs never share identity space or schema.
package extract
