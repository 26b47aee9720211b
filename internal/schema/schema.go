// Package schema keeps the trips table current. It applies the embedded goose
// migrations in version order and is safe to call on every process start.
// A migration that fails never stops the ones after it.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/pkordes/triplog/migrations"
)

// ErrIncomplete marks an Ensure run in which at least one migration failed.
// The versions that did apply stay applied and the failed ones are retried on
// the next run.
var ErrIncomplete = errors.New("schema incomplete")

// Manager applies and reports on schema migrations.
type Manager struct {
	provider *goose.Provider
	log      *slog.Logger
}

// NewManager builds a Manager for db using the embedded migration files.
// db must be a Postgres *sql.DB (e.g. from stdlib.OpenDBFromPool).
func NewManager(db *sql.DB, log *slog.Logger) (*Manager, error) {
	return NewManagerFS(db, migrations.FS, log)
}

// NewManagerFS is NewManager over the goose migration files found at the
// root of fsys.
func NewManagerFS(db *sql.DB, fsys fs.FS, log *slog.Logger) (*Manager, error) {
	if log == nil {
		log = slog.Default()
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("schema.NewManager: %w", err)
	}
	return &Manager{provider: provider, log: log}, nil
}

// Ensure applies every pending migration in version order, one transaction
// per version. Already-applied versions are skipped, so repeated calls are
// no-ops. A failing version is logged and skipped and the remaining versions
// still run; the returned error then wraps ErrIncomplete and every failure.
// Any other error means the migration state could not be read at all.
func (m *Manager) Ensure(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("schema.Manager.Ensure: %w", err)
	}

	var (
		applied int
		failed  []error
	)
	for _, st := range statuses {
		if st.State != goose.StatePending {
			continue
		}
		r, err := m.provider.ApplyVersion(ctx, st.Source.Version, true)
		if err != nil {
			m.log.Error("schema migration failed",
				"version", st.Source.Version,
				"path", st.Source.Path,
				"error", err,
			)
			failed = append(failed, fmt.Errorf("version %d: %w", st.Source.Version, err))
			continue
		}
		applied++
		m.logResult(r)
	}

	version, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		m.log.Warn("schema partially migrated",
			"version", version,
			"applied", applied,
			"failed", len(failed),
		)
		return fmt.Errorf("schema.Manager.Ensure: %w: %w", ErrIncomplete, errors.Join(failed...))
	}
	m.log.Info("schema up to date", "version", version, "applied", applied)
	return nil
}

// Version returns the highest applied migration version (0 on a fresh database).
func (m *Manager) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("schema.Manager.Version: %w", err)
	}
	return v, nil
}

func (m *Manager) logResult(r *goose.MigrationResult) {
	if r == nil || r.Source == nil {
		return
	}
	m.log.Info("schema migration applied",
		"version", r.Source.Version,
		"path", r.Source.Path,
		"duration_ms", r.Duration.Milliseconds(),
	)
}
