package proof

import (
	"fmt"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// idKey marks the entity identifier inside a serialized subject, keeping
// it out of the property namespace.
const idKey = "@id"

// Commitment is the value committed to the ledger for one guarded change:
// the asserting principal and the canonical post-change snapshot.
// Immutable once written; identified externally by its proof token.
type Commitment struct {
	PrincipalID string
	FinalState  []state.Subject
}

// MarshalCanonical serializes the commitment to its canonical wire form:
//
//	{"pid": <principal id>, "state": [{"@id": <entity>, <property>: <value>}...]}
//
// Single-element value sets serialize as the bare value, multi-element
// sets as a (canonically sorted) array. A property with no values is
// omitted, so a fully deleted entity serializes as {"@id": ...} alone.
//
// The identity marker lives in the same namespace as property names on
// the wire, so a subject carrying a property literally named "@id" is
// rejected: silently overwriting the marker would corrupt the record.
func (c Commitment) MarshalCanonical() ([]byte, error) {
	subjects := make(state.Array, len(c.FinalState))
	for i, s := range c.FinalState {
		obj := state.Object{idKey: state.String(s.ID)}
		for _, p := range s.PropertyNames() {
			if p == idKey {
				return nil, fmt.Errorf("serialize commitment: subject %q has a property named %s, which collides with the identity marker", s.ID, idKey)
			}
			vals := s.Properties[p]
			switch len(vals) {
			case 0:
				// Valueless property: the subject's presence alone records it.
			case 1:
				obj[p] = vals[0]
			default:
				obj[p] = state.Array(vals)
			}
		}
		subjects[i] = obj
	}

	doc := state.Object{
		"pid":   state.String(c.PrincipalID),
		"state": subjects,
	}
	b, err := state.MarshalCanonical(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize commitment: %w", err)
	}
	return b, nil
}

// UnmarshalCommitment parses a canonical commitment document, as
// reconstructed from the ledger's value channel.
//
// A bare property value decodes as a single-element set and an array as a
// multi-element set; the wire form does not distinguish a set containing
// one array. Committed state never nests value sets, so the flattening is
// lossless for every commitment this protocol writes.
func UnmarshalCommitment(canonical []byte) (Commitment, error) {
	v, err := state.FromJSON(canonical)
	if err != nil {
		return Commitment{}, fmt.Errorf("parse commitment: %w", err)
	}
	doc, ok := v.(state.Object)
	if !ok {
		return Commitment{}, fmt.Errorf("parse commitment: not an object")
	}

	pid, ok := doc["pid"].(state.String)
	if !ok {
		return Commitment{}, fmt.Errorf("parse commitment: missing principal id")
	}

	rawSubjects, ok := doc["state"].(state.Array)
	if !ok {
		return Commitment{}, fmt.Errorf("parse commitment: missing state list")
	}

	c := Commitment{PrincipalID: string(pid), FinalState: make([]state.Subject, 0, len(rawSubjects))}
	for i, raw := range rawSubjects {
		obj, ok := raw.(state.Object)
		if !ok {
			return Commitment{}, fmt.Errorf("parse commitment: state[%d] is not a subject", i)
		}
		id, ok := obj[idKey].(state.String)
		if !ok {
			return Commitment{}, fmt.Errorf("parse commitment: state[%d] has no %s", i, idKey)
		}
		subject := state.Subject{ID: string(id), Properties: make(map[string][]state.Value, len(obj)-1)}
		for k, val := range obj {
			if k == idKey {
				continue
			}
			if arr, isArr := val.(state.Array); isArr {
				subject.Properties[k] = append([]state.Value(nil), arr...)
			} else {
				subject.Properties[k] = []state.Value{val}
			}
		}
		if err := subject.Normalize(); err != nil {
			return Commitment{}, fmt.Errorf("parse commitment: state[%d]: %w", i, err)
		}
		c.FinalState = append(c.FinalState, subject)
	}
	state.SortSubjects(c.FinalState)
	return c, nil
}

// subject returns the committed subject with the given identifier, if any.
func (c Commitment) subject(id string) (state.Subject, bool) {
	for _, s := range c.FinalState {
		if s.ID == id {
			return s, true
		}
	}
	return state.Subject{}, false
}
