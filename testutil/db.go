// Package testutil provides shared helpers for Postgres integration tests.
// Every helper that takes a *testing.T skips the test when TEST_DATABASE_URL
// is unset, so `go test ./...` passes without a database.
//
// The repo and schema packages share one database and the schema tests drop
// the trips table; run integration packages with `go test -p 1 ./...`.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/triplog/internal/schema"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool opens a *pgxpool.Pool against the integration database and closes
// it when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	cfg, err := pgxpool.ParseConfig(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: parse %s: %v", DSNEnv, err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction that is rolled back when the test finishes.
// Anything written through it disappears with the rollback, so tests need no
// cleanup SQL and never see each other's rows.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB opens a database/sql handle on the pgx driver, for code that
// drives goose. Closed when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openSQLDB(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ExecAll runs each statement in order against db, failing the test on the
// first error. Used to stage legacy table shapes before a migration run.
func ExecAll(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, q := range stmts {
		if _, err := db.ExecContext(context.Background(), q); err != nil {
			t.Fatalf("testutil.ExecAll: %q: %v", q, err)
		}
	}
}

// ResetDatabase drops the trips table and goose's version table, leaving an
// empty database for a migration test.
func ResetDatabase(t *testing.T, db *sql.DB) {
	t.Helper()
	ExecAll(t, db,
		`DROP TABLE IF EXISTS trips`,
		`DROP TABLE IF EXISTS goose_db_version`,
	)
}

// MigrateForTestMain brings the integration database to the latest schema.
// It is meant for TestMain, where no *testing.T exists: it reports false when
// TEST_DATABASE_URL is unset and panics on any failure.
func MigrateForTestMain() bool {
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		return false
	}

	db, err := openSQLDB(dsn)
	if err != nil {
		panic("testutil.MigrateForTestMain: " + err.Error())
	}
	defer db.Close()

	mgr, err := schema.NewManager(db, nil)
	if err != nil {
		panic("testutil.MigrateForTestMain: " + err.Error())
	}
	if err := mgr.Ensure(context.Background()); err != nil {
		panic("testutil.MigrateForTestMain: " + err.Error())
	}
	return true
}

func openSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// requireDSN returns the integration database URL or skips the test.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
