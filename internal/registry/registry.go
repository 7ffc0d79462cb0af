// Package registry instantiates agreement conditions from declaration
// records.
//
// A domain's configuration names the agreement mechanisms it requires as
// static descriptors: {id, module, class}. The registry maps those
// descriptors to factory functions, so the surrounding extension-loading
// mechanism can construct a protocol instance without compile-time
// knowledge of it. The protocol itself stays a plain component behind the
// Agreement interface, oblivious to how it was instantiated.
package registry

import (
	"context"
	"fmt"

	"github.com/m-ld/m-ld-iroha/internal/ledger"
	"github.com/m-ld/m-ld-iroha/internal/proof"
	"github.com/m-ld/m-ld-iroha/internal/state"
)

// Declaration is the static descriptor by which domain configuration
// names an agreement extension. Pure configuration data.
type Declaration struct {
	ID     string `json:"id"`
	Module string `json:"module"`
	Class  string `json:"class"`
}

// ref is the registry key for a declaration.
func (d Declaration) ref() string {
	return d.Module + "/" + d.Class
}

// Agreement is the fixed interface every agreement condition implements.
// proof.Protocol is the canonical implementation.
type Agreement interface {
	Prove(ctx context.Context, rs state.ReadState, delta state.Delta, principal state.Principal) (string, error)
	Test(ctx context.Context, rs state.ReadState, delta state.Delta, pv state.ProofValue, principal state.Principal) proof.Outcome
}

// Config is the collaborator bundle a factory consumes. Ledger is
// required; the rest default sensibly.
type Config struct {
	Ledger  ledger.Client
	Account string
	Tokens  state.TokenGenerator
	Metrics proof.MetricsRecorder
}

// Factory constructs an agreement condition from its collaborators.
type Factory func(Config) (Agreement, error)

// Registry maps declared module/class references to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with the built-in agreement-proof protocol
// registered under "m-ld-iroha/AgreementProof".
func Default() *Registry {
	r := NewRegistry()
	// Registration of the built-in cannot fail.
	_ = r.Register("m-ld-iroha", "AgreementProof", newAgreementProof)
	return r
}

// Register adds a factory for a module/class pair. Duplicate
// registration is an error.
func (r *Registry) Register(module, class string, f Factory) error {
	if module == "" || class == "" {
		return fmt.Errorf("registry: module and class are required")
	}
	if f == nil {
		return fmt.Errorf("registry: nil factory for %s/%s", module, class)
	}
	key := Declaration{Module: module, Class: class}.ref()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("registry: %s already registered", key)
	}
	r.factories[key] = f
	return nil
}

// New instantiates the agreement condition a declaration names.
func (r *Registry) New(decl Declaration, cfg Config) (Agreement, error) {
	f, ok := r.factories[decl.ref()]
	if !ok {
		return nil, fmt.Errorf("registry: no factory for declaration %q (%s)", decl.ID, decl.ref())
	}
	return f(cfg)
}

func newAgreementProof(cfg Config) (Agreement, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("registry: agreement proof requires a ledger client")
	}
	opts := make([]proof.Option, 0, 3)
	if cfg.Account != "" {
		opts = append(opts, proof.WithAccount(cfg.Account))
	}
	if cfg.Tokens != nil {
		opts = append(opts, proof.WithTokenGenerator(cfg.Tokens))
	}
	if cfg.Metrics != nil {
		opts = append(opts, proof.WithMetrics(cfg.Metrics))
	}
	return proof.New(cfg.Ledger, opts...), nil
}
