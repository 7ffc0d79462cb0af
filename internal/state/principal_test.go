package state

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipal_Defined(t *testing.T) {
	assert.False(t, Principal{}.Defined())
	assert.True(t, Principal{ID: "alice"}.Defined())
}

func TestPrincipal_SignVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	p := Principal{ID: "alice", Key: priv}
	msg := []byte("account|pk_deadbeef|value")
	sig := p.Sign(msg)

	assert.True(t, ed25519.Verify(pub, msg, sig))
	assert.Equal(t, pub, p.Public())
}

func TestPrincipal_PublicWithoutKey(t *testing.T) {
	assert.Nil(t, Principal{ID: "alice"}.Public())
}
