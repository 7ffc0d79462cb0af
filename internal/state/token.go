package state

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TokenPrefix marks a string as a proof token. The prefix plus 32 hex
// digits keeps tokens inside the ledger's key constraints (ASCII
// alphanumeric/underscore, bounded length) while remaining recognizable
// when the proof-carrying field of an update holds unrelated values too.
const TokenPrefix = "pk_"

// tokenHexLen is the number of hex digits following the prefix.
const tokenHexLen = 32

// IsToken reports whether s is structurally a proof token: the prefix
// followed by exactly 32 lowercase hex digits.
func IsToken(s string) bool {
	if !strings.HasPrefix(s, TokenPrefix) {
		return false
	}
	rest := s[len(TokenPrefix):]
	if len(rest) != tokenHexLen {
		return false
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// TokenGenerator produces proof tokens. One fresh token is generated per
// prove; the token is the only linkage between a propagated change and
// its ledger commitment.
type TokenGenerator interface {
	Generate() string
}

// RandomTokenGenerator generates cryptographically random proof tokens
// from UUIDv4 randomness (122 bits), giving negligible collision
// probability per proof.
//
// Thread-safety: stateless and safe for concurrent use.
type RandomTokenGenerator struct{}

// Generate creates a new token of the form "pk_" + 32 lowercase hex digits.
//
// Panics if the platform's randomness source fails (never in practice).
func (RandomTokenGenerator) Generate() string {
	id := uuid.Must(uuid.NewRandom())
	return TokenPrefix + strings.ReplaceAll(id.String(), "-", "")
}

// FixedTokenGenerator returns predetermined tokens for testing, enabling
// deterministic ledger contents and golden commitment comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokenGenerator creates a generator that returns tokens in order.
// Generate panics once all tokens are consumed; tests that mint more
// proofs than they declared are misconfigured and should fail fast.
func NewFixedTokenGenerator(tokens ...string) *FixedTokenGenerator {
	return &FixedTokenGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("FixedTokenGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
