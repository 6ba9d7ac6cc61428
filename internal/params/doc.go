// Package params loads and validates the BEIR V / BEIR VII coefficient
// tables.
//
// The coefficients are reference data transcribed from the published reports
// (BEIR V, 1990; BEIR VII Phase 2, 2006). They ship embedded in the binary as
// a YAML document and may be overridden with an external file. Either way the
// table is validated twice at load time, before any computation runs:
//
//  1. structurally, against an embedded CUE schema (types, ranges, required
//     fields), so a malformed table fails with a precise path
//  2. semantically, in Go: every known organ has an entry, every entry's
//     model type is implemented, and model-specific coefficients are present
//
// A loaded Set is immutable and shared by all computations without locking.
package params
