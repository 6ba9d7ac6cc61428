// Package dose provides the foundational types for the dose-to-risk pipeline.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import dose; dose imports nothing internal. This keeps it
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Artifacts are immutable once built: Observation values are never
//     mutated after extraction, Table is never mutated after transposition
//   - Organ, Sex and Model are typed enumerations, never loose strings
//   - Diagnostics are plain values, never panics or sentinel control flow
package dose
