package proof

import (
	"context"
	"fmt"

	"github.com/m-ld/m-ld-iroha/internal/ledger"
	"github.com/m-ld/m-ld-iroha/internal/snapshot"
	"github.com/m-ld/m-ld-iroha/internal/state"
)

// DefaultAccount is the ledger account commitments are written to when no
// domain-scoped account is configured.
const DefaultAccount = "agreements"

// Reasons reported by Test, verbatim in outcome and diagnostics.
const (
	reasonNoPrincipal       = "no principal in update"
	reasonNoProofKey        = "no proof key in update"
	reasonProofMissing      = "no proof in ledger"
	reasonPrincipalMismatch = "proof principal does not match update principal"
	reasonStateMismatch     = "proof does not match update"
)

// Protocol is the agreement-proof protocol over a ledger client. It holds
// no per-call state; one instance serves a whole domain and may be used
// concurrently.
type Protocol struct {
	builder snapshot.Builder
	client  ledger.Client
	account string
	tokens  state.TokenGenerator
	metrics MetricsRecorder
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithAccount scopes commitments to a domain-specific ledger account.
func WithAccount(account string) Option {
	return func(p *Protocol) { p.account = account }
}

// WithTokenGenerator overrides the token source. Tests use a fixed
// generator for deterministic ledger contents.
func WithTokenGenerator(g state.TokenGenerator) Option {
	return func(p *Protocol) { p.tokens = g }
}

// WithMetrics attaches an outcome recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(p *Protocol) { p.metrics = m }
}

// New creates a protocol over the given ledger client.
func New(client ledger.Client, opts ...Option) *Protocol {
	p := &Protocol{
		client:  client,
		account: DefaultAccount,
		tokens:  state.RandomTokenGenerator{},
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prove derives the canonical post-change snapshot for the delta, commits
// {principal, snapshot} to the ledger under a fresh token, and returns
// the token. The ledger write is the protocol's only side effect, and it
// must complete before the caller propagates the change - otherwise
// receiving replicas transiently see a missing proof.
//
// A change without a principal cannot be proved; that is the expected
// ErrUnauthenticated, not a programming error. Ledger submission failures
// propagate without internal retry.
func (p *Protocol) Prove(ctx context.Context, rs state.ReadState, delta state.Delta, principal state.Principal) (string, error) {
	if !principal.Defined() {
		p.metrics.RecordProve("unauthenticated")
		return "", ErrUnauthenticated
	}

	subjects, err := p.builder.Build(ctx, delta, rs)
	if err != nil {
		p.metrics.RecordProve("error")
		return "", fmt.Errorf("prove: %w", err)
	}

	canonical, err := Commitment{PrincipalID: principal.ID, FinalState: subjects}.MarshalCanonical()
	if err != nil {
		p.metrics.RecordProve("error")
		return "", fmt.Errorf("prove: %w", err)
	}
	value, err := ledger.Encode(canonical)
	if err != nil {
		p.metrics.RecordProve("error")
		return "", fmt.Errorf("prove: %w", err)
	}

	token := p.tokens.Generate()
	if err := p.client.Submit(ctx, p.account, token, value, principal); err != nil {
		p.metrics.RecordProve("error")
		return "", fmt.Errorf("prove: submit commitment: %w", err)
	}

	p.metrics.RecordProve("proved")
	return token, nil
}

// Test verifies a received change against its ledger commitment: extract
// the token from the proof value, fetch and decode the commitment, check
// the principal, then check that every locally derived fact is present in
// the committed snapshot. Performs no mutation; safe to repeat.
func (p *Protocol) Test(ctx context.Context, rs state.ReadState, delta state.Delta, pv state.ProofValue, principal state.Principal) Outcome {
	outcome := p.test(ctx, rs, delta, pv, principal)
	p.metrics.RecordTest(string(outcome.Code))
	return outcome
}

func (p *Protocol) test(ctx context.Context, rs state.ReadState, delta state.Delta, pv state.ProofValue, principal state.Principal) Outcome {
	if !principal.Defined() {
		return failed(CodeNoPrincipal, reasonNoPrincipal)
	}

	token, ok := state.ExtractToken(pv)
	if !ok {
		return failed(CodeNoProofKey, reasonNoProofKey)
	}

	value, found, err := p.client.Query(ctx, p.account, token, ledger.CredentialOf(principal))
	if err != nil {
		return errored("query proof", err)
	}
	if !found {
		return failed(CodeProofMissing, reasonProofMissing)
	}

	canonical, err := ledger.Decode(value)
	if err != nil {
		return errored("decode proof record", err)
	}
	commitment, err := UnmarshalCommitment(canonical)
	if err != nil {
		return errored("decode proof record", err)
	}

	if commitment.PrincipalID != principal.ID {
		return failed(CodePrincipalMismatch, reasonPrincipalMismatch)
	}

	local, err := p.builder.Build(ctx, delta, rs)
	if err != nil {
		return errored("derive local snapshot", err)
	}

	// Subset check: every locally observed fact must be present in the
	// proved commitment. The commitment may legitimately carry more.
	for _, subject := range local {
		committed, present := commitment.subject(subject.ID)
		if !present {
			// A subject with no surviving values asserts nothing testable.
			if len(subject.Properties) == 0 {
				continue
			}
			return failed(CodeStateMismatch, reasonStateMismatch)
		}
		for property, values := range subject.Properties {
			for _, v := range values {
				if !committed.Contains(property, v) {
					return failed(CodeStateMismatch, reasonStateMismatch)
				}
			}
		}
	}
	return agreed()
}
