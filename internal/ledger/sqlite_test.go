package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ld/m-ld-iroha/internal/testutil"
)

func openTestLedger(t *testing.T) *SQLiteClient {
	t.Helper()
	client, err := OpenSQLite(t.TempDir() + "/ledger.db")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ledger.db"

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestSQLiteClient_DurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ledger.db"
	ctx := context.Background()
	alice := testutil.NewPrincipal(t, "alice")

	client, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, client.Submit(ctx, "dom", "key_1", "value-1", alice))
	require.NoError(t, client.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Query(ctx, "dom", "key_1", CredentialOf(alice))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value-1", got)
}

func TestSQLiteClient_TamperedRecordDetected(t *testing.T) {
	client := openTestLedger(t)
	ctx := context.Background()
	alice := testutil.NewPrincipal(t, "alice")

	require.NoError(t, client.Submit(ctx, "dom", "key_1", "honest-value", alice))

	// Rewrite the value behind the client's back, leaving the original
	// signature in place.
	_, err := client.db.Exec(`UPDATE records SET value = ? WHERE account = ? AND key = ?`,
		"forged-value", "dom", "key_1")
	require.NoError(t, err)

	_, _, err = client.Query(ctx, "dom", "key_1", CredentialOf(alice))
	assert.ErrorIs(t, err, ErrBadSignature)
}
