package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid token", "pk_deadbeefdeadbeefdeadbeefdeadbeef", true},
		{"missing prefix", "deadbeefdeadbeefdeadbeefdeadbeef", false},
		{"wrong prefix", "px_deadbeefdeadbeefdeadbeefdeadbeef", false},
		{"too short", "pk_deadbeef", false},
		{"too long", "pk_deadbeefdeadbeefdeadbeefdeadbeef00", false},
		{"uppercase hex rejected", "pk_DEADBEEFDEADBEEFDEADBEEFDEADBEEF", false},
		{"non-hex rejected", "pk_zzzzbeefdeadbeefdeadbeefdeadbeef", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsToken(tt.input))
		})
	}
}

func TestRandomTokenGenerator_Shape(t *testing.T) {
	gen := RandomTokenGenerator{}
	token := gen.Generate()
	assert.True(t, IsToken(token), "generated token %q must be token-shaped", token)
	assert.Len(t, token, len(TokenPrefix)+32)
}

func TestRandomTokenGenerator_Unique(t *testing.T) {
	gen := RandomTokenGenerator{}
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token := gen.Generate()
		_, dup := seen[token]
		require.False(t, dup, "token collision: %s", token)
		seen[token] = struct{}{}
	}
}

func TestFixedTokenGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedTokenGenerator("t1", "t2")
	assert.Equal(t, "t1", gen.Generate())
	assert.Equal(t, "t2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
