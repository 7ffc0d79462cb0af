// Package testutil provides shared fixtures for protocol tests: an
// in-memory point-in-time read state and delta construction helpers.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// MemoryState is a state.ReadState backed by a plain map. It models one
// replica's point-in-time view of the replicated store.
//
// Thread-safety: safe for concurrent reads and writes via internal mutex,
// so one fixture can serve concurrent prove/test invocations in tests.
type MemoryState struct {
	mu       sync.RWMutex
	entities map[string]map[string][]state.Value

	// FailGets, when set, makes every Get return an error. Used to test
	// collaborator-failure propagation.
	FailGets bool
}

// NewMemoryState creates an empty read state.
func NewMemoryState() *MemoryState {
	return &MemoryState{entities: make(map[string]map[string][]state.Value)}
}

// Set replaces the values of one property for one entity, creating the
// entity if needed.
func (m *MemoryState) Set(entityID, property string, values ...state.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	props, ok := m.entities[entityID]
	if !ok {
		props = make(map[string][]state.Value)
		m.entities[entityID] = props
	}
	props[property] = append([]state.Value(nil), values...)
}

// Get implements state.ReadState.
func (m *MemoryState) Get(ctx context.Context, entityID string, properties ...string) (map[string][]state.Value, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailGets {
		return nil, false, fmt.Errorf("read state unavailable")
	}

	props, ok := m.entities[entityID]
	if !ok {
		return nil, false, nil
	}
	out := make(map[string][]state.Value, len(properties))
	for _, p := range properties {
		if vals, present := props[p]; present {
			out[p] = append([]state.Value(nil), vals...)
		}
	}
	return out, true, nil
}

// Insert builds an inserted fact. Shorthand for delta fixtures.
func Insert(entity, property string, value state.Value) state.Fact {
	return state.Fact{Entity: entity, Property: property, Value: value}
}

// Delete builds a deleted fact. Shorthand for delta fixtures.
func Delete(entity, property string, value state.Value) state.Fact {
	return state.Fact{Entity: entity, Property: property, Value: value}
}
