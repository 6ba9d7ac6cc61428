// Package transpose reshapes raw dose observations into the organ-indexed,
// time-ordered dose table the risk calculator consumes.
//
// The extractor emits observations in document order: grouped by time window,
// one cell per organ. Risk computation iterates the other way, organ by
// organ. Transposition performs that pivot and enforces the table invariants:
// strictly increasing, unique time markers within each organ's series.
//
// Identical duplicate (organ, time) cells collapse silently; duplicates with
// differing doses mean the source data is ambiguous and fail the document.
package transpose
