// Package extract parses simulation output documents into raw dose
// observations.
//
// The documents are the plain-text reports the dispersion simulation tool
// writes: a metadata header, then one block per integration window. A block
// opens with a "Time After Release" marker line and lists organ doses as
// dot-padded labels with bracketed values:
//
//	Time After Release        :   2,00 hours
//	Thyroid.........................[5.00E-02]
//	Lung............................[1.20E-02]
//
// Lines matching no recognized pattern are skipped and counted, never fatal.
// A numeric cell that fails to parse on an otherwise-recognized line excludes
// only that cell. A document yielding zero usable observations fails with
// ErrCodeNoData.
//
// Extraction is a pure function of the document text. File reading, encoding
// fallback and upload handling belong to the caller.
package extract
