// Package proof implements the two-sided agreement-proof protocol.
//
// A replica that performs a guarded change calls Prove: the protocol
// derives the canonical post-change snapshot for exactly the facts the
// change touched, commits {principal, final state} to the external ledger
// under a fresh token, and returns the token. The token travels with the
// propagated change as its agreement evidence. Any receiving replica
// calls Test: the protocol re-derives the snapshot from local data, reads
// the ledger record under the token, and checks that the committed
// principal matches the acting principal and that every locally observed
// fact is present in the committed snapshot.
//
// Lifecycle of one guarded change across the distributed system:
//
//	Proposed -> Proved (token assigned, ledger write acknowledged)
//	         -> Propagated (token travels with the change)
//	         -> Tested: agreed
//	                  | proof-missing (retryable: consensus not yet visible)
//	                  | no-principal / no-proof-key / principal-mismatch /
//	                    state-mismatch (terminal, reported upward)
//
// There is no rollback here; a terminal test failure is reported to the
// surrounding policy layer, which decides disposition.
//
// # Concurrency
//
// The protocol is stateless between calls and holds no locks: every
// Prove/Test invocation is independent, so invocations may run
// concurrently. The ledger is the only shared mutated resource, and the
// protocol writes each token exactly once. Test performs no writes and is
// safely repeatable.
//
// A receiving replica may observe the change before the ledger's
// consensus admits the proof; that ordering race is expected, not an
// error. "no proof in ledger" is the one retryable outcome - callers back
// off and re-test until the ledger's liveness resolves it.
//
// # Comparison semantics
//
// Test performs a subset check, not full equality: every local
// (entity, property, value) triple must appear in the committed snapshot,
// but the commitment may carry additional properties outside the local
// delta's footprint. The scan is quadratic in proved-entities x
// local-properties; both are bounded by one change's footprint, so the
// simple scan is the accepted cost.
package proof
