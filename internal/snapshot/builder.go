// Package snapshot derives canonical final-state snapshots from change
// deltas.
//
// The builder computes, for a given delta, exactly the entities and
// properties the delta touched, then resolves each to its post-change
// values by overlaying the delta onto a fresh read of backing state. The
// overlay is required because the store read may reflect a state slightly
// before or after the delta depending on timing; re-applying the delta on
// top always yields the authoritative post-change view.
//
// Determinism: for an identical (delta, store-snapshot) pair, repeated
// builds yield value-identical subject lists. Subjects are sorted by
// identifier and value sets by canonical encoding, so downstream
// comparison never sees false negatives from ordering differences.
package snapshot

import (
	"context"
	"fmt"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// Builder computes final-state subject lists. It is stateless and safe
// for concurrent use.
type Builder struct{}

// Build returns one subject per entity touched by the delta, carrying the
// post-change values of every property the delta mentioned for that
// entity. Properties the delta does not mention are never loaded, which
// bounds the snapshot to the change's footprint rather than whole
// entities.
//
// An entity unknown to the store (for example, one being created by this
// very delta) contributes an empty placeholder before the overlay. An
// entity whose touched properties end up valueless after deletion is
// still emitted, with an empty property map: its disappearance is itself
// part of the provable state.
func (Builder) Build(ctx context.Context, delta state.Delta, rs state.ReadState) ([]state.Subject, error) {
	entities := delta.Entities()
	subjects := make([]state.Subject, 0, len(entities))

	for _, id := range entities {
		props := delta.Properties(id)

		current, found, err := rs.Get(ctx, id, props...)
		if err != nil {
			return nil, fmt.Errorf("fetch state for %q: %w", id, err)
		}

		subject := state.Subject{ID: id, Properties: make(map[string][]state.Value, len(props))}
		if found {
			for _, p := range props {
				if vals := current[p]; len(vals) > 0 {
					subject.Properties[p] = append([]state.Value(nil), vals...)
				}
			}
		}

		overlay(&subject, delta)
		if err := subject.Normalize(); err != nil {
			return nil, fmt.Errorf("normalize subject %q: %w", id, err)
		}
		subjects = append(subjects, subject)
	}

	state.SortSubjects(subjects)
	return subjects, nil
}

// overlay applies the delta's own deletes then inserts to one subject, so
// the result reflects the delta even when the store read was taken before
// (or after) the change landed. Normalize deduplicates afterwards, which
// makes the insert step idempotent against a read that already contains
// the inserted values.
func overlay(subject *state.Subject, delta state.Delta) {
	for _, f := range delta.Deleted {
		if f.Entity != subject.ID {
			continue
		}
		kept := subject.Properties[f.Property][:0]
		for _, v := range subject.Properties[f.Property] {
			if !state.Equal(v, f.Value) {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(subject.Properties, f.Property)
		} else {
			subject.Properties[f.Property] = kept
		}
	}

	for _, f := range delta.Inserted {
		if f.Entity != subject.ID {
			continue
		}
		subject.Properties[f.Property] = append(subject.Properties[f.Property], f.Value)
	}
}
