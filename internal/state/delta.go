package state

import (
	"fmt"
	"slices"
)

// Fact is one (entity, property, value) triple asserted or retracted by a
// guarded change.
type Fact struct {
	Entity   string `json:"entity"`
	Property string `json:"property"`
	Value    Value  `json:"value"`
}

// Delta describes one guarded change as observed by the replicated store:
// the facts it inserted and the facts it deleted. A Delta is consumed once
// per prove/test invocation and never mutated.
//
// Invariant: a given (entity, property, value) triple never appears on both
// sides of the same delta. The store owns that invariant; Validate exists
// for fixtures and tests.
type Delta struct {
	Inserted []Fact `json:"inserted"`
	Deleted  []Fact `json:"deleted"`
}

// Validate checks the both-sides invariant. It is not called on the hot
// path; the protocol trusts the store's delta feed.
func (d Delta) Validate() error {
	deleted := make(map[string]struct{}, len(d.Deleted))
	for _, f := range d.Deleted {
		k, err := factKey(f)
		if err != nil {
			return err
		}
		deleted[k] = struct{}{}
	}
	for _, f := range d.Inserted {
		k, err := factKey(f)
		if err != nil {
			return err
		}
		if _, dup := deleted[k]; dup {
			return fmt.Errorf("fact %s/%s appears in both inserted and deleted", f.Entity, f.Property)
		}
	}
	return nil
}

func factKey(f Fact) (string, error) {
	vk, err := CanonicalKey(f.Value)
	if err != nil {
		return "", fmt.Errorf("fact %s/%s: %w", f.Entity, f.Property, err)
	}
	return f.Entity + "\x00" + f.Property + "\x00" + vk, nil
}

// Entities returns the sorted, deduplicated identifiers of every entity
// mentioned on either side of the delta.
func (d Delta) Entities() []string {
	seen := make(map[string]struct{})
	for _, f := range d.Inserted {
		seen[f.Entity] = struct{}{}
	}
	for _, f := range d.Deleted {
		seen[f.Entity] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Properties returns the sorted, deduplicated property names the delta
// mentions for one entity. Properties the delta does not touch are never
// part of a snapshot footprint.
func (d Delta) Properties(entity string) []string {
	seen := make(map[string]struct{})
	for _, f := range d.Inserted {
		if f.Entity == entity {
			seen[f.Property] = struct{}{}
		}
	}
	for _, f := range d.Deleted {
		if f.Entity == entity {
			seen[f.Property] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
