// Package config loads, normalizes, and validates sc2dataset configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and extraction pipeline need: output directories, frame sampling,
// schema discovery strategy, writer format, and worker counts.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical strategy names, and clear validation errors.
package config
