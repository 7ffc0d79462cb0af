package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

// run executes the CLI with the given args and returns stdout and the
// execution error.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// fixtures writes matching state and delta files and returns their paths.
func fixtures(t *testing.T) (statePath, deltaPath string) {
	t.Helper()
	dir := t.TempDir()
	statePath = filepath.Join(dir, "state.yaml")
	deltaPath = filepath.Join(dir, "delta.yaml")
	require.NoError(t, os.WriteFile(statePath, []byte(`entities:
  - id: fred
    properties:
      height: 5
`), 0o644))
	require.NoError(t, os.WriteFile(deltaPath, []byte(`insert:
  - { entity: fred, property: name, value: Fred }
delete: []
`), 0o644))
	return statePath, deltaPath
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "show", "pk_00000000000000000000000000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestProveThenTest(t *testing.T) {
	statePath, deltaPath := fixtures(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t,
		"--ledger", ledgerPath,
		"prove", "--state", statePath, "--delta", deltaPath,
		"--principal", "alice", "--key", testSeed)
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(token, "pk_"), "unexpected prove output %q", out)

	out, err = run(t,
		"--ledger", ledgerPath,
		"test", "--state", statePath, "--delta", deltaPath,
		"--proof", token, "--principal", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "AGREED")
}

func TestProveThenTestJSON(t *testing.T) {
	statePath, deltaPath := fixtures(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t,
		"--ledger", ledgerPath, "--format", "json",
		"prove", "--state", statePath, "--delta", deltaPath,
		"--principal", "alice", "--key", testSeed)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.True(t, strings.HasPrefix(token, "pk_"))

	out, err = run(t,
		"--ledger", ledgerPath, "--format", "json",
		"test", "--state", statePath, "--delta", deltaPath,
		"--proof", token, "--principal", "alice")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestRetryableExitCode(t *testing.T) {
	statePath, deltaPath := fixtures(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t,
		"--ledger", ledgerPath,
		"test", "--state", statePath, "--delta", deltaPath,
		"--proof", "pk_00000000000000000000000000000000", "--principal", "alice")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "PROOF_MISSING")
}

func TestTestTerminalExitCode(t *testing.T) {
	statePath, deltaPath := fixtures(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t,
		"--ledger", ledgerPath,
		"prove", "--state", statePath, "--delta", deltaPath,
		"--principal", "alice", "--key", testSeed)
	require.NoError(t, err)
	token := strings.TrimSpace(out)

	out, err = run(t,
		"--ledger", ledgerPath,
		"test", "--state", statePath, "--delta", deltaPath,
		"--proof", token, "--principal", "bob")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "PRINCIPAL_MISMATCH")
}

func TestShowCommittedToken(t *testing.T) {
	statePath, deltaPath := fixtures(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t,
		"--ledger", ledgerPath,
		"prove", "--state", statePath, "--delta", deltaPath,
		"--principal", "alice", "--key", testSeed)
	require.NoError(t, err)
	token := strings.TrimSpace(out)

	out, err = run(t, "--ledger", ledgerPath, "show", token)
	require.NoError(t, err)
	assert.Contains(t, out, "principal: alice")
	assert.Contains(t, out, `"@id": "fred"`)
}

func TestShowRejectsMalformedToken(t *testing.T) {
	_, err := run(t, "--ledger", filepath.Join(t.TempDir(), "ledger.db"), "show", "not-a-token")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShowUnknownToken(t *testing.T) {
	_, err := run(t,
		"--ledger", filepath.Join(t.TempDir(), "ledger.db"),
		"show", "pk_00000000000000000000000000000000")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
