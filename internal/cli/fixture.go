package cli

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// StateFixture is a YAML snapshot of a replica's store, keyed by entity.
//
//	entities:
//	  - id: fred
//	    properties:
//	      name: Fred
//	      interests: [chess, skittles]
type StateFixture struct {
	Entities []EntityFixture `yaml:"entities"`
}

// EntityFixture is one entity's property map. A YAML list is a value
// set; anything else is a single value.
type EntityFixture struct {
	ID         string         `yaml:"id"`
	Properties map[string]any `yaml:"properties"`
}

// DeltaFixture is a YAML rendering of a guarded change.
type DeltaFixture struct {
	Insert []FactFixture `yaml:"insert"`
	Delete []FactFixture `yaml:"delete"`
}

// FactFixture is one inserted or deleted triple.
type FactFixture struct {
	Entity   string `yaml:"entity"`
	Property string `yaml:"property"`
	Value    any    `yaml:"value"`
}

// fixtureState is a read state backed by a loaded fixture.
type fixtureState struct {
	entities map[string]map[string][]state.Value
}

func (f *fixtureState) Get(ctx context.Context, entityID string, properties ...string) (map[string][]state.Value, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	props, ok := f.entities[entityID]
	if !ok {
		return nil, false, nil
	}
	out := make(map[string][]state.Value, len(properties))
	for _, p := range properties {
		if values, ok := props[p]; ok {
			out[p] = values
		}
	}
	return out, true, nil
}

// LoadStateFixture reads a replica state fixture from a YAML file.
func LoadStateFixture(path string) (state.ReadState, error) {
	var fixture StateFixture
	if err := readYAML(path, &fixture); err != nil {
		return nil, err
	}
	fs := &fixtureState{entities: make(map[string]map[string][]state.Value, len(fixture.Entities))}
	for _, e := range fixture.Entities {
		if e.ID == "" {
			return nil, fmt.Errorf("%s: entity with no id", path)
		}
		props := make(map[string][]state.Value, len(e.Properties))
		for name, raw := range e.Properties {
			values, err := fixtureValues(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %s/%s: %w", path, e.ID, name, err)
			}
			props[name] = values
		}
		fs.entities[e.ID] = props
	}
	return fs, nil
}

// LoadDeltaFixture reads a guarded change from a YAML file.
func LoadDeltaFixture(path string) (state.Delta, error) {
	var fixture DeltaFixture
	if err := readYAML(path, &fixture); err != nil {
		return state.Delta{}, err
	}
	ins, err := fixtureFacts(fixture.Insert)
	if err != nil {
		return state.Delta{}, fmt.Errorf("%s: insert: %w", path, err)
	}
	del, err := fixtureFacts(fixture.Delete)
	if err != nil {
		return state.Delta{}, fmt.Errorf("%s: delete: %w", path, err)
	}
	delta := state.Delta{Inserted: ins, Deleted: del}
	if err := delta.Validate(); err != nil {
		return state.Delta{}, fmt.Errorf("%s: %w", path, err)
	}
	return delta, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func fixtureValues(raw any) ([]state.Value, error) {
	if list, ok := raw.([]any); ok {
		values := make([]state.Value, 0, len(list))
		for _, elem := range list {
			v, err := state.FromAny(elem)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}
	v, err := state.FromAny(raw)
	if err != nil {
		return nil, err
	}
	return []state.Value{v}, nil
}

func fixtureFacts(specs []FactFixture) ([]state.Fact, error) {
	out := make([]state.Fact, 0, len(specs))
	for i, f := range specs {
		v, err := state.FromAny(f.Value)
		if err != nil {
			return nil, fmt.Errorf("[%d] %s/%s: %w", i, f.Entity, f.Property, err)
		}
		out = append(out, state.Fact{Entity: f.Entity, Property: f.Property, Value: v})
	}
	return out, nil
}

// ParsePrincipal builds a signing principal from an identity and an
// optional hex-encoded ed25519 seed or private key. Test and show do
// not sign, so the key may be empty.
func ParsePrincipal(id, keyHex string) (state.Principal, error) {
	p := state.Principal{ID: id}
	if keyHex == "" {
		return p, nil
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return state.Principal{}, fmt.Errorf("decode key: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		p.Key = ed25519.NewKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		p.Key = ed25519.PrivateKey(raw)
	default:
		return state.Principal{}, fmt.Errorf("key must be a %d or %d byte hex string", ed25519.SeedSize, ed25519.PrivateKeySize)
	}
	return p, nil
}
