// Package store provides durable session storage for pipeline runs.
//
// The store keeps three things in SQLite: run metadata, per-cell risk
// results, and the transposed dose tables of successfully parsed documents.
// The cached dose tables let a later invocation recompute risk under
// different ages without re-parsing the source documents.
//
// The store is an optional collaborator: the core pipeline works entirely in
// memory and never touches it. The CLI wires the two together.
package store
