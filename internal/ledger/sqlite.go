package ledger

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking (PRAGMA user_version):
// 1 - Initial schema
const currentSchemaVersion = 1

// SQLiteClient is a durable single-node reference ledger. It stands in
// for the external BFT ledger in local development and integration tests:
// durable once Submit returns, append-only keys, signed records. It does
// not, of course, provide byzantine fault tolerance.
type SQLiteClient struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// SQLiteOption configures OpenSQLite.
type SQLiteOption func(*SQLiteClient)

// WithLogger attaches a logger for connection and submission diagnostics.
func WithLogger(log logrus.FieldLogger) SQLiteOption {
	return func(c *SQLiteClient) {
		if log != nil {
			c.log = log
		}
	}
}

// OpenSQLite creates or opens a ledger database at the given path.
// Applies required pragmas and migrations automatically; idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// SQLite supports one writer at a time, so the pool is capped at a
// single connection to avoid SQLITE_BUSY errors.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to ledger database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	c := &SQLiteClient{db: db, log: discardLogger()}
	for _, opt := range opts {
		opt(c)
	}
	c.log.WithField("path", path).Debug("ledger database open")
	return c, nil
}

// Close closes the database connection.
func (c *SQLiteClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Submit implements Client. The record is durable once nil is returned
// (WAL + NORMAL synchronous). A second submission under the same
// (account, key) fails with ErrKeyExists.
func (c *SQLiteClient) Submit(ctx context.Context, account, key, value string, p state.Principal) error {
	if !ValidKey(key) {
		return ErrBadKey
	}
	pub := p.Public()
	if pub == nil {
		return ErrUnsigned
	}
	sig := p.Sign(recordDigest(account, key, value))

	res, err := c.db.ExecContext(ctx, `
		INSERT INTO records (account, key, value, signer, public_key, signature)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account, key) DO NOTHING
	`, account, key, value, p.ID, []byte(pub), sig)
	if err != nil {
		return fmt.Errorf("submit record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("submit record: %w", err)
	}
	if n == 0 {
		return ErrKeyExists
	}

	c.log.WithFields(logrus.Fields{
		"account": account,
		"key":     key,
		"signer":  p.ID,
	}).Debug("ledger record committed")
	return nil
}

// Query implements Client. The stored signature is verified against the
// stored signer key before the value is returned, so a tampered database
// is detected rather than silently trusted.
func (c *SQLiteClient) Query(ctx context.Context, account, key string, _ Credential) (string, bool, error) {
	var (
		value string
		pub   []byte
		sig   []byte
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT value, public_key, signature FROM records
		WHERE account = ? AND key = ?
	`, account, key).Scan(&value, &pub, &sig)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query record: %w", err)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), recordDigest(account, key, value), sig) {
		return "", false, ErrBadSignature
	}
	return value, true, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
