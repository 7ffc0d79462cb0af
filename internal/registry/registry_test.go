package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ld/m-ld-iroha/internal/ledger"
	"github.com/m-ld/m-ld-iroha/internal/state"
	"github.com/m-ld/m-ld-iroha/internal/testutil"
)

var statutesDecl = Declaration{ID: "statutes", Module: "m-ld-iroha", Class: "AgreementProof"}

func TestDefault_InstantiatesWorkingAgreement(t *testing.T) {
	agreement, err := Default().New(statutesDecl, Config{
		Ledger:  ledger.NewMemoryClient(),
		Account: "testdomain",
	})
	require.NoError(t, err)

	// The instantiated protocol proves and tests end to end.
	ctx := context.Background()
	alice := testutil.NewPrincipal(t, "alice")
	delta := state.Delta{
		Inserted: []state.Fact{testutil.Insert("fred", "name", state.String("Fred"))},
	}

	token, err := agreement.Prove(ctx, testutil.NewMemoryState(), delta, alice)
	require.NoError(t, err)

	outcome := agreement.Test(ctx, testutil.NewMemoryState(), delta, state.TokenValue(token), alice)
	assert.True(t, outcome.Passed(), "outcome: %s", outcome)
}

func TestDefault_RequiresLedger(t *testing.T) {
	_, err := Default().New(statutesDecl, Config{})
	assert.Error(t, err)
}

func TestRegistry_UnknownDeclaration(t *testing.T) {
	_, err := Default().New(Declaration{ID: "x", Module: "m-ld-iroha", Class: "NoSuch"}, Config{
		Ledger: ledger.NewMemoryClient(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no factory")
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	f := func(Config) (Agreement, error) { return nil, nil }
	require.NoError(t, r.Register("m", "C", f))
	assert.Error(t, r.Register("m", "C", f))
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register("", "C", func(Config) (Agreement, error) { return nil, nil }))
	assert.Error(t, r.Register("m", "", func(Config) (Agreement, error) { return nil, nil }))
	assert.Error(t, r.Register("m", "C", nil))
}
