package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// NewPrincipal creates a principal with a fresh ed25519 signing key.
func NewPrincipal(t *testing.T, id string) state.Principal {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return state.Principal{ID: id, Key: priv}
}
