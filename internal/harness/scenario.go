package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// Scenario is one conformance case: a guarded change proved on one
// replica and tested on another, with an expected outcome.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Principal is the identity acting on both replicas. The harness
	// generates a signing key for it. Empty means an unauthenticated
	// test (the prove step is skipped).
	Principal string `yaml:"principal"`

	// TestPrincipal overrides the identity used on the testing replica.
	// Empty means the testing replica sees the same principal.
	TestPrincipal string `yaml:"test_principal,omitempty"`

	// Prover and Tester hold the initial entity state of each replica.
	// A nil Tester means both replicas start identical.
	Prover []EntityState `yaml:"prover"`
	Tester []EntityState `yaml:"tester,omitempty"`

	// Delta is the guarded change as the proving replica observed it.
	Delta DeltaSpec `yaml:"delta"`

	// TestDelta overrides the delta seen by the testing replica, for
	// scenarios where the replicas disagree about the change itself.
	TestDelta *DeltaSpec `yaml:"test_delta,omitempty"`

	// Tamper mutates the flow between prove and test.
	Tamper *TamperSpec `yaml:"tamper,omitempty"`

	// Expect names the outcome the test step must produce.
	Expect ExpectSpec `yaml:"expect"`

	// Golden, when true, compares the decoded ledger commitment against
	// testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`
}

// EntityState is the initial property map of one entity on a replica.
type EntityState struct {
	ID         string         `yaml:"id"`
	Properties map[string]any `yaml:"properties"`
}

// DeltaSpec mirrors state.Delta in YAML-friendly form.
type DeltaSpec struct {
	Insert []FactSpec `yaml:"insert"`
	Delete []FactSpec `yaml:"delete"`
}

// FactSpec is one inserted or deleted triple.
type FactSpec struct {
	Entity   string `yaml:"entity"`
	Property string `yaml:"property"`
	Value    any    `yaml:"value"`
}

// TamperSpec mutates the flow between the prove and test steps.
type TamperSpec struct {
	// ForgeToken replaces the proof value seen by the tester with a
	// token that was never committed.
	ForgeToken bool `yaml:"forge_token,omitempty"`

	// DropProof removes the proof value from the tester's update
	// entirely, as if the change carried no proof key.
	DropProof bool `yaml:"drop_proof,omitempty"`

	// RewritePrincipal rewrites the committed record so its principal
	// field names this identity instead.
	RewritePrincipal string `yaml:"rewrite_principal,omitempty"`
}

// ExpectSpec names the required outcome of the test step.
type ExpectSpec struct {
	// Outcome is one of the proof outcome codes, lowercased:
	// agreed, no_principal, no_proof_key, proof_missing,
	// principal_mismatch, state_mismatch.
	Outcome string `yaml:"outcome"`
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", filepath.Base(path), err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}

// LoadScenarios reads every *.yaml file directly under dir, sorted by
// file name for stable test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if s.Expect.Outcome == "" {
		return fmt.Errorf("missing expect.outcome")
	}
	if s.Tamper != nil && s.Tamper.ForgeToken && s.Tamper.DropProof {
		return fmt.Errorf("tamper cannot both forge and drop the proof")
	}
	return nil
}

// delta converts a DeltaSpec to the protocol's delta type.
func (d DeltaSpec) delta() (state.Delta, error) {
	ins, err := facts(d.Insert)
	if err != nil {
		return state.Delta{}, fmt.Errorf("insert: %w", err)
	}
	del, err := facts(d.Delete)
	if err != nil {
		return state.Delta{}, fmt.Errorf("delete: %w", err)
	}
	out := state.Delta{Inserted: ins, Deleted: del}
	if err := out.Validate(); err != nil {
		return state.Delta{}, err
	}
	return out, nil
}

func facts(specs []FactSpec) ([]state.Fact, error) {
	out := make([]state.Fact, 0, len(specs))
	for i, f := range specs {
		v, err := state.FromAny(f.Value)
		if err != nil {
			return nil, fmt.Errorf("[%d] %s/%s: %w", i, f.Entity, f.Property, err)
		}
		out = append(out, state.Fact{Entity: f.Entity, Property: f.Property, Value: v})
	}
	return out, nil
}
