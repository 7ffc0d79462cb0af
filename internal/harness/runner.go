package harness

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/m-ld/m-ld-iroha/internal/ledger"
	"github.com/m-ld/m-ld-iroha/internal/proof"
	"github.com/m-ld/m-ld-iroha/internal/state"
	"github.com/m-ld/m-ld-iroha/internal/testutil"
)

// Fixed tokens keep ledger keys, and therefore golden files, stable.
const (
	scenarioToken = "pk_feedfacefeedfacefeedfacefeedface"
	forgedToken   = "pk_00000000000000000000000000000000"
)

// Result is the observable output of one scenario run.
type Result struct {
	// Token is the proof key returned by the prove step, empty when the
	// scenario skips proving.
	Token string

	// Outcome is what the testing replica concluded.
	Outcome proof.Outcome

	// Commitment is the decoded canonical ledger record, nil when
	// nothing was committed.
	Commitment []byte
}

// Run executes a scenario end to end: stage both replicas, prove on the
// first, apply any tampering, test on the second.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	delta, err := s.Delta.delta()
	if err != nil {
		return nil, fmt.Errorf("delta: %w", err)
	}
	testDelta := delta
	if s.TestDelta != nil {
		testDelta, err = s.TestDelta.delta()
		if err != nil {
			return nil, fmt.Errorf("test_delta: %w", err)
		}
	}

	prover, err := replica(s.Prover)
	if err != nil {
		return nil, fmt.Errorf("prover state: %w", err)
	}
	testerEntities := s.Tester
	if testerEntities == nil {
		testerEntities = s.Prover
	}
	tester, err := replica(testerEntities)
	if err != nil {
		return nil, fmt.Errorf("tester state: %w", err)
	}

	client := ledger.NewMemoryClient()
	proto := proof.New(client,
		proof.WithTokenGenerator(state.NewFixedTokenGenerator(scenarioToken)))

	result := &Result{}
	principal := newPrincipal(s.Principal)

	if principal.Defined() {
		result.Token, err = proto.Prove(ctx, prover, delta, principal)
		if err != nil {
			return nil, fmt.Errorf("prove: %w", err)
		}
	}

	pv := proofValue(s, result.Token)

	// The testing replica may see the ledger through a compromised view.
	testProto := proto
	if s.Tamper != nil && s.Tamper.RewritePrincipal != "" {
		testProto = proof.New(&rewritingClient{Client: client, principalID: s.Tamper.RewritePrincipal})
	}

	testPrincipal := principal
	if s.TestPrincipal != "" {
		testPrincipal = newPrincipal(s.TestPrincipal)
	}
	result.Outcome = testProto.Test(ctx, tester, testDelta, pv, testPrincipal)

	if result.Token != "" {
		value, found, err := client.Query(ctx, proof.DefaultAccount, result.Token, ledger.CredentialOf(principal))
		if err != nil {
			return nil, fmt.Errorf("read back commitment: %w", err)
		}
		if found {
			result.Commitment, err = ledger.Decode(value)
			if err != nil {
				return nil, fmt.Errorf("decode commitment: %w", err)
			}
		}
	}
	return result, nil
}

// Check compares the outcome against the scenario's expectation.
func (r *Result) Check(s *Scenario) error {
	want, err := expectedCode(s.Expect.Outcome)
	if err != nil {
		return err
	}
	if r.Outcome.Code != want {
		return fmt.Errorf("expected outcome %s, got %s", want, r.Outcome)
	}
	return nil
}

func expectedCode(name string) (proof.Code, error) {
	codes := map[string]proof.Code{
		"agreed":             proof.CodeAgreed,
		"no_principal":       proof.CodeNoPrincipal,
		"no_proof_key":       proof.CodeNoProofKey,
		"proof_missing":      proof.CodeProofMissing,
		"principal_mismatch": proof.CodePrincipalMismatch,
		"state_mismatch":     proof.CodeStateMismatch,
		"error":              proof.CodeError,
	}
	code, ok := codes[name]
	if !ok {
		return "", fmt.Errorf("unknown expected outcome %q", name)
	}
	return code, nil
}

// replica stages an in-memory read state from scenario entity fixtures.
func replica(entities []EntityState) (*testutil.MemoryState, error) {
	rs := testutil.NewMemoryState()
	for _, e := range entities {
		for prop, raw := range e.Properties {
			values, err := propertyValues(raw)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", e.ID, prop, err)
			}
			rs.Set(e.ID, prop, values...)
		}
	}
	return rs, nil
}

// propertyValues treats a YAML list as a value set and anything else as
// a single value, matching the commitment wire shape.
func propertyValues(raw any) ([]state.Value, error) {
	if list, ok := raw.([]any); ok {
		values := make([]state.Value, 0, len(list))
		for _, elem := range list {
			v, err := state.FromAny(elem)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}
	v, err := state.FromAny(raw)
	if err != nil {
		return nil, err
	}
	return []state.Value{v}, nil
}

// proofValue derives the proof value the testing replica observes, after
// any tampering with the update itself.
func proofValue(s *Scenario, token string) state.ProofValue {
	if s.Tamper != nil {
		switch {
		case s.Tamper.DropProof:
			return nil
		case s.Tamper.ForgeToken:
			return state.TokenValue(forgedToken)
		}
	}
	if token == "" {
		return nil
	}
	return state.TokenValue(token)
}

// rewritingClient presents a compromised ledger view: queried records
// come back with their principal field rewritten, signatures intact as
// far as the reader can tell.
type rewritingClient struct {
	ledger.Client
	principalID string
}

func (r *rewritingClient) Query(ctx context.Context, account, key string, cred ledger.Credential) (string, bool, error) {
	value, found, err := r.Client.Query(ctx, account, key, cred)
	if err != nil || !found {
		return value, found, err
	}
	canonical, err := ledger.Decode(value)
	if err != nil {
		return "", false, err
	}
	c, err := proof.UnmarshalCommitment(canonical)
	if err != nil {
		return "", false, err
	}
	c.PrincipalID = r.principalID
	rewritten, err := c.MarshalCanonical()
	if err != nil {
		return "", false, err
	}
	encoded, err := ledger.Encode(rewritten)
	if err != nil {
		return "", false, err
	}
	return encoded, true, nil
}

// newPrincipal mints a throwaway signing identity. The key never leaves
// the scenario run, so fresh randomness per run is fine.
func newPrincipal(id string) state.Principal {
	if id == "" {
		return state.Principal{}
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return state.Principal{ID: id, Key: priv}
}
