// Package state provides the shared data model for the agreement-proof
// protocol.
//
// This package contains value and contract definitions only. All other
// internal packages import state; state imports nothing internal. This
// keeps the model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere in the model - use Int (int64) for numbers.
//     Floats break canonical serialization and therefore determinism.
//   - All serialization for comparison or commitment uses RFC 8785
//     canonical JSON (see canonical.go).
//   - Deltas and subjects are value objects: one per protocol invocation,
//     never shared mutable state.
package state
