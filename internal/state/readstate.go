package state

import "context"

// ReadState is a capability scoped to one point-in-time snapshot of the
// replicated store. It exposes exactly one operation: fetch the current
// values of named properties for one entity.
//
// Lifetime discipline is the caller's: acquire the handle, use it within
// one prove/test invocation, release it before the guarded change is
// superseded. The protocol never retains a handle across calls.
type ReadState interface {
	// Get returns the current values of the named properties for the
	// entity. The second result is false when the entity is unknown to
	// the store (for example, it is being created by the very delta
	// under examination).
	//
	// Properties with no values may be omitted from the returned map.
	Get(ctx context.Context, entityID string, properties ...string) (map[string][]Value, bool, error)
}
