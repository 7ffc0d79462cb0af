// Package ledger defines the client contract for the external
// totally-ordered BFT ledger, plus two reference clients used by tests,
// the conformance harness, and local development.
//
// The protocol core consumes exactly two ledger operations: submit a
// signed key/value record (durable once acknowledged) and query a record
// by key. The ledger's consensus algorithm, block production, and peer
// networking are out of scope; a production deployment supplies its own
// Client implementation for the real ledger.
//
// # Value channel
//
// The ledger's value channel does not preserve nested quoting: one level
// of string escaping is consumed between write and read. Commitments are
// therefore stored in escaped form (see codec.go) so that the single
// compensating unwrap on read reconstructs the exact canonical text.
// Encode/Decode are the only functions that see escaped text; everything
// above this package handles structured commitments.
//
// # Reference clients
//
//   - SQLiteClient: durable append-only single-node ledger. WAL mode,
//     embedded schema, single-writer connection pool.
//   - MemoryClient: mutex-guarded map with identical semantics.
//
// Both verify record signatures and enforce key immutability: a key, once
// written, is permanently retained and can never be rewritten.
package ledger
