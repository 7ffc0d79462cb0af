package proof

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned by Prove when the change carries no
// principal. An unauthenticated change is an ordinary occurrence the
// policy layer handles (reject the change, not crash the node), so it is
// a sentinel checked with errors.Is, never a panic.
var ErrUnauthenticated = errors.New("proof: no principal for guarded change")

// Code categorizes test outcomes.
type Code string

const (
	// CodeAgreed: the committed snapshot corroborates every locally
	// observed fact and the principal matches.
	CodeAgreed Code = "AGREED"

	// CodeNoPrincipal: the update carries no acting principal.
	CodeNoPrincipal Code = "NO_PRINCIPAL"

	// CodeNoProofKey: no token-shaped value in the update's proof field;
	// the change was propagated without going through Prove.
	CodeNoProofKey Code = "NO_PROOF_KEY"

	// CodeProofMissing: no ledger record under the token. Retryable -
	// the ledger's consensus may simply not have caught up yet.
	CodeProofMissing Code = "PROOF_MISSING"

	// CodePrincipalMismatch: the committed principal differs from the
	// update's principal. Terminal; possible substitution or replay.
	CodePrincipalMismatch Code = "PRINCIPAL_MISMATCH"

	// CodeStateMismatch: a locally observed fact is absent from the
	// committed snapshot. Terminal; forged proof, stale local read, or an
	// attempt to smuggle unagreed changes.
	CodeStateMismatch Code = "STATE_MISMATCH"

	// CodeError: a collaborator failed (ledger unreachable, read-state
	// fetch failure, undecodable record). Infrastructure, not semantics.
	CodeError Code = "ERROR"
)

// Outcome is the tri-state result of Test: pass, a specific semantic
// failure with a human-readable reason, or a collaborator error. Callers
// need the reason for diagnostics and rollback messaging, so Test never
// collapses it to a boolean.
type Outcome struct {
	Code   Code
	Reason string

	// Err carries the underlying failure for CodeError outcomes.
	Err error
}

// Passed reports whether the change is agreed.
func (o Outcome) Passed() bool {
	return o.Code == CodeAgreed
}

// Retryable reports whether the failure is expected to resolve on its
// own. Only a missing proof qualifies: the external ledger's consensus
// latency is unbounded relative to the data replication transport, so
// callers re-test with backoff rather than rejecting the change.
func (o Outcome) Retryable() bool {
	return o.Code == CodeProofMissing
}

// String renders the outcome for logs and CLI output.
func (o Outcome) String() string {
	if o.Passed() {
		return "agreed"
	}
	if o.Err != nil {
		return fmt.Sprintf("%s: %s: %v", o.Code, o.Reason, o.Err)
	}
	return fmt.Sprintf("%s: %s", o.Code, o.Reason)
}

func agreed() Outcome {
	return Outcome{Code: CodeAgreed}
}

func failed(code Code, reason string) Outcome {
	return Outcome{Code: code, Reason: reason}
}

func errored(reason string, err error) Outcome {
	return Outcome{Code: CodeError, Reason: reason, Err: err}
}
