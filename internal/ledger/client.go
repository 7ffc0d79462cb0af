package ledger

import (
	"context"
	"crypto/ed25519"
	"errors"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// MaxKeyLen bounds ledger record keys, matching the external system's
// identifier constraints.
const MaxKeyLen = 64

var (
	// ErrBadKey is returned when a record key violates the ledger's
	// key-naming constraints (ASCII alphanumeric/underscore, bounded
	// length).
	ErrBadKey = errors.New("ledger: invalid record key")

	// ErrKeyExists is returned when a submission would overwrite an
	// existing record. Ledger records are append-only and immutable.
	ErrKeyExists = errors.New("ledger: record already exists")

	// ErrBadSignature is returned when a stored record's signature does
	// not verify against its signer, indicating tampering.
	ErrBadSignature = errors.New("ledger: record signature invalid")

	// ErrUnsigned is returned when a submission carries no signing key.
	ErrUnsigned = errors.New("ledger: principal has no signing key")
)

// Credential identifies a querying party to the ledger.
type Credential struct {
	AccountID string
	PublicKey ed25519.PublicKey
}

// CredentialOf derives the query credential for a principal.
func CredentialOf(p state.Principal) Credential {
	return Credential{AccountID: p.ID, PublicKey: p.Public()}
}

// Client is the ledger access contract the protocol depends on.
//
// Submit must be durable once it returns nil: the record survives process
// failure and is visible to every subsequent Query, on every node, once
// the ledger's own consensus admits it. Neither operation is retried by
// the protocol; retry policy belongs to the client implementation or the
// calling orchestration layer. Implementations must bound their waits -
// an operation fails and reports, it never hangs indefinitely.
type Client interface {
	// Submit writes a signed key/value record under the domain account.
	// The key must satisfy [A-Za-z0-9_]{1,64}. Values are escaped JSON
	// string bodies (see Encode); the value channel does not preserve
	// nested quoting.
	Submit(ctx context.Context, account, key, value string, p state.Principal) error

	// Query reads a record by key. The second result is false when no
	// record exists under the key - an expected transient state while the
	// ledger's consensus catches up with the data replication transport.
	// The value comes back exactly as Submit stored it: the escaped
	// string body, which Decode unwraps once. An implementation over a
	// transport that strips an escape level on read must re-escape so
	// callers always see the stored body.
	Query(ctx context.Context, account, key string, c Credential) (string, bool, error)
}

// ValidKey reports whether a record key satisfies the ledger's naming
// constraints.
func ValidKey(key string) bool {
	if len(key) == 0 || len(key) > MaxKeyLen {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// recordDigest is the byte string a record signature covers. The null
// separators prevent field-boundary ambiguity.
func recordDigest(account, key, value string) []byte {
	msg := make([]byte, 0, len(account)+len(key)+len(value)+2)
	msg = append(msg, account...)
	msg = append(msg, 0)
	msg = append(msg, key...)
	msg = append(msg, 0)
	msg = append(msg, value...)
	return msg
}
