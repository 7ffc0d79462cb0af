package state

import "slices"

// Subject is the derived post-change truth for one entity touched by a
// delta: for every property the delta mentioned, the current set of
// values after the change. Built fresh on every prove/test invocation and
// never persisted locally; the ledger holds the only durable copy, inside
// a serialized commitment.
//
// A subject whose property map is empty is still meaningful: it records
// that the entity's touched properties all ended up valueless (for
// example, a full deletion), which is itself part of the provable state.
type Subject struct {
	ID         string
	Properties map[string][]Value
}

// Contains reports whether the subject holds the given value for the
// given property.
func (s Subject) Contains(property string, v Value) bool {
	for _, have := range s.Properties[property] {
		if Equal(have, v) {
			return true
		}
	}
	return false
}

// PropertyNames returns the subject's property names in sorted order.
func (s Subject) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for p := range s.Properties {
		names = append(names, p)
	}
	slices.Sort(names)
	return names
}

// Normalize sorts every property's value set by canonical encoding and
// removes duplicates, so that value-equal subjects compare equal
// regardless of construction order. Returns an error only if a value
// cannot be canonically encoded.
func (s *Subject) Normalize() error {
	for p, vals := range s.Properties {
		type keyed struct {
			key string
			val Value
		}
		ks := make([]keyed, 0, len(vals))
		for _, v := range vals {
			k, err := CanonicalKey(v)
			if err != nil {
				return err
			}
			ks = append(ks, keyed{key: k, val: v})
		}
		slices.SortFunc(ks, func(a, b keyed) int {
			if a.key < b.key {
				return -1
			}
			if a.key > b.key {
				return 1
			}
			return 0
		})
		out := make([]Value, 0, len(ks))
		var prev string
		for i, kv := range ks {
			if i > 0 && kv.key == prev {
				continue
			}
			out = append(out, kv.val)
			prev = kv.key
		}
		s.Properties[p] = out
	}
	return nil
}

// SortSubjects orders subjects by identifier, in place. Snapshot builders
// rely on this for deterministic output.
func SortSubjects(subjects []Subject) {
	slices.SortFunc(subjects, func(a, b Subject) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
