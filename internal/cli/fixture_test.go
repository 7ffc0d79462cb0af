package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadStateFixture(t *testing.T) {
	path := writeFixture(t, "state.yaml", `entities:
  - id: fred
    properties:
      name: Fred
      height: 5
      interests: [chess, skittles]
`)
	rs, err := LoadStateFixture(path)
	require.NoError(t, err)

	got, found, err := rs.Get(context.Background(), "fred", "name", "interests", "absent")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []state.Value{state.String("Fred")}, got["name"])
	assert.Equal(t, []state.Value{state.String("chess"), state.String("skittles")}, got["interests"])
	assert.NotContains(t, got, "absent")

	_, found, err = rs.Get(context.Background(), "wilma")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadStateFixtureRejectsMissingID(t *testing.T) {
	path := writeFixture(t, "state.yaml", "entities:\n  - properties: {name: Fred}\n")
	_, err := LoadStateFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity with no id")
}

func TestLoadStateFixtureRejectsFractions(t *testing.T) {
	path := writeFixture(t, "state.yaml", "entities:\n  - id: fred\n    properties: {height: 5.5}\n")
	_, err := LoadStateFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
}

func TestLoadDeltaFixture(t *testing.T) {
	path := writeFixture(t, "delta.yaml", `insert:
  - { entity: fred, property: name, value: Fred }
delete:
  - { entity: fred, property: name, value: Freddy }
`)
	delta, err := LoadDeltaFixture(path)
	require.NoError(t, err)
	require.Len(t, delta.Inserted, 1)
	require.Len(t, delta.Deleted, 1)
	assert.Equal(t, state.String("Fred"), delta.Inserted[0].Value)
}

func TestLoadDeltaFixtureRejectsBothSides(t *testing.T) {
	path := writeFixture(t, "delta.yaml", `insert:
  - { entity: fred, property: name, value: Fred }
delete:
  - { entity: fred, property: name, value: Fred }
`)
	_, err := LoadDeltaFixture(path)
	require.Error(t, err)
}

func TestParsePrincipal(t *testing.T) {
	seed := strings.Repeat("ab", 32)

	p, err := ParsePrincipal("alice", seed)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)
	assert.NotNil(t, p.Public())

	p, err = ParsePrincipal("alice", "")
	require.NoError(t, err)
	assert.Nil(t, p.Public())

	_, err = ParsePrincipal("alice", "zz")
	require.Error(t, err)

	_, err = ParsePrincipal("alice", "abcd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "byte hex string")
}
