package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ld/m-ld-iroha/internal/state"
	"github.com/m-ld/m-ld-iroha/internal/testutil"
)

func TestValidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"token-shaped", "pk_deadbeefdeadbeefdeadbeefdeadbeef", true},
		{"alphanumeric", "Key_123", true},
		{"empty", "", false},
		{"dash", "a-b", false},
		{"space", "a b", false},
		{"unicode", "clé", false},
		{"max length", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"over max length", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidKey(tt.key))
		})
	}
}

// clientContract exercises the semantics every Client implementation must
// share: durable visibility, append-only keys, key validation, signature
// requirements.
func clientContract(t *testing.T, client Client) {
	t.Helper()
	ctx := context.Background()
	alice := testutil.NewPrincipal(t, "alice")
	cred := CredentialOf(alice)

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, client.Submit(ctx, "dom", "key_1", "value-1", alice))
		got, found, err := client.Query(ctx, "dom", "key_1", cred)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "value-1", got)
	})

	t.Run("escaped body preserved verbatim", func(t *testing.T) {
		// The value channel stores the escaped string body exactly as
		// written; the single unwrap belongs to Decode, never to Query.
		body, err := Encode([]byte(`{"a":"b"}`))
		require.NoError(t, err)
		require.NoError(t, client.Submit(ctx, "dom", "key_esc", body, alice))

		got, found, err := client.Query(ctx, "dom", "key_esc", cred)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, body, got)
		assert.Equal(t, `{\"a\":\"b\"}`, got)
	})

	t.Run("absent key", func(t *testing.T) {
		_, found, err := client.Query(ctx, "dom", "never_written", cred)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("append only", func(t *testing.T) {
		require.NoError(t, client.Submit(ctx, "dom", "key_2", "first", alice))
		err := client.Submit(ctx, "dom", "key_2", "second", alice)
		assert.ErrorIs(t, err, ErrKeyExists)

		got, _, err := client.Query(ctx, "dom", "key_2", cred)
		require.NoError(t, err)
		assert.Equal(t, "first", got)
	})

	t.Run("accounts are disjoint", func(t *testing.T) {
		require.NoError(t, client.Submit(ctx, "dom_a", "key_3", "a", alice))
		_, found, err := client.Query(ctx, "dom_b", "key_3", cred)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("bad key rejected", func(t *testing.T) {
		err := client.Submit(ctx, "dom", "not a key!", "v", alice)
		assert.ErrorIs(t, err, ErrBadKey)
	})

	t.Run("unsigned submission rejected", func(t *testing.T) {
		err := client.Submit(ctx, "dom", "key_4", "v", state.Principal{ID: "bob"})
		assert.ErrorIs(t, err, ErrUnsigned)
	})
}

func TestMemoryClient_Contract(t *testing.T) {
	clientContract(t, NewMemoryClient())
}

func TestSQLiteClient_Contract(t *testing.T) {
	client := openTestLedger(t)
	clientContract(t, client)
}
