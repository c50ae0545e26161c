// Package checksum computes content checksums for routine sources.
//
// Two checksums are recorded per source: a raw SHA-256 of the exact file
// bytes, and a normalized SHA-256 that is resilient to comment and
// whitespace churn. Normalization strips MySQL comments (--, # and
// /* */) while preserving string and identifier literals, collapses
// whitespace and lowercases the remainder.
//
// The compiler records both in BuildMetadata for diagnostics and
// downstream change reporting; the staleness decision itself is driven by
// modification time, placeholders, catalog presence and session settings.
package checksum
