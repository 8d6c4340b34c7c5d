// Package xconnector provides a client for public small-molecule databases
// (HMDB, LMDB, T3DB, YMDB, ReSpect) and the static BEDB and
// PolyphenolExplorer datasets. It builds validated query URLs, and turns the
// heterogeneous HTML tables of detail and result pages into uniform
// per-accession records.
//
// This package contains domain types, pure normalization logic and
// interfaces following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., goquery/, sqlite/, rod/).
package xconnector
