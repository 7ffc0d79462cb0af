package ledger

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// MemoryClient is an in-process Client for tests and the conformance
// harness. Semantics match SQLiteClient: append-only keys, signed
// records, signature verification on read.
//
// Thread-safety: safe for concurrent use via internal mutex; multiple
// replicas in one test can share a single instance as "the ledger".
type MemoryClient struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	value     string
	signer    string
	publicKey ed25519.PublicKey
	signature []byte
}

// NewMemoryClient creates an empty in-memory ledger.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{records: make(map[string]memoryRecord)}
}

// Submit implements Client.
func (m *MemoryClient) Submit(ctx context.Context, account, key, value string, p state.Principal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidKey(key) {
		return ErrBadKey
	}
	pub := p.Public()
	if pub == nil {
		return ErrUnsigned
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	full := account + "/" + key
	if _, exists := m.records[full]; exists {
		return ErrKeyExists
	}
	m.records[full] = memoryRecord{
		value:     value,
		signer:    p.ID,
		publicKey: pub,
		signature: p.Sign(recordDigest(account, key, value)),
	}
	return nil
}

// Query implements Client.
func (m *MemoryClient) Query(ctx context.Context, account, key string, _ Credential) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[account+"/"+key]
	if !ok {
		return "", false, nil
	}
	if !ed25519.Verify(rec.publicKey, recordDigest(account, key, rec.value), rec.signature) {
		return "", false, ErrBadSignature
	}
	return rec.value, true, nil
}

// Tamper rewrites a stored record's value without re-signing, for
// tamper-detection tests.
func (m *MemoryClient) Tamper(account, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	full := account + "/" + key
	rec, ok := m.records[full]
	if !ok {
		return
	}
	rec.value = value
	m.records[full] = rec
}
