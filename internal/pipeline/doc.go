// Package pipeline sequences extraction, transposition and risk computation
// over batches of simulation documents.
//
// Each document runs through the three stages independently; the failure of
// one document never aborts the others. A document's outcome is either a risk
// report or a recorded failure with its reason, and the batch result lists
// both.
//
// The orchestrator holds the only mutable state in the core: a per-session
// cache of transposed dose tables, keyed by document ID, so a report can be
// recomputed under different ages without re-parsing the source text. The
// cache is explicit and scoped to the orchestrator instance, never ambient.
//
// Documents within one batch are processed by a bounded worker pool. The
// stages within one document are strictly sequential; no ordering is
// guaranteed between documents.
package pipeline
