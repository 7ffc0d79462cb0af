package state

import "crypto/ed25519"

// Principal is the identity asserting a guarded change: a stable
// identifier plus a signing key compatible with the ledger's
// authentication scheme. Principals are supplied by the host environment
// per call; the protocol never stores them.
//
// On the testing side only the identifier is consulted for the principal
// match; the key is needed there solely to authenticate the ledger query.
type Principal struct {
	ID  string
	Key ed25519.PrivateKey
}

// Defined reports whether the principal identifies anyone at all. An
// update without a principal is an ordinary occurrence (an unguarded or
// unauthenticated change), not a programming error.
func (p Principal) Defined() bool {
	return p.ID != ""
}

// Public returns the principal's public key, or nil if the principal
// carries no signing key.
func (p Principal) Public() ed25519.PublicKey {
	if len(p.Key) == 0 {
		return nil
	}
	return p.Key.Public().(ed25519.PublicKey)
}

// Sign signs a message with the principal's key.
func (p Principal) Sign(msg []byte) []byte {
	return ed25519.Sign(p.Key, msg)
}
