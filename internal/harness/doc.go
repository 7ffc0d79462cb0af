// Package harness runs YAML conformance scenarios against the agreement
// proof protocol.
//
// Each scenario stages two replicas of the same domain: the proving
// replica applies a guarded change and commits its snapshot to a shared
// in-memory ledger, then the testing replica re-derives the snapshot from
// its own (possibly divergent) state and checks the commitment. Tokens
// come from a fixed generator so ledger keys, and therefore golden files,
// are stable across runs.
//
// Scenario files live in testdata/. Optional golden files under
// testdata/golden/ hold the decoded ledger commitment for scenarios that
// opt in with `golden: true`; regenerate them with `go test -update`.
//
// A scenario can tamper with the flow between prove and test to exercise
// the failure outcomes: forging the token, dropping the ledger record, or
// rewriting the committed principal.
package harness
