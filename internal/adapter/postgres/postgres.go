// Package postgres implements the remote cycle store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"cycletrack/internal/domain"
)

// DB wraps a *sql.DB and implements domain.RemoteStore.
type DB struct {
	sql *sql.DB
}

// Ensure interface is met.
var _ domain.RemoteStore = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS cycles (id TEXT PRIMARY KEY, user_id TEXT NOT NULL, start_date TEXT NOT NULL, end_date TEXT, CHECK (end_date IS NULL OR end_date >= start_date));",
		"CREATE INDEX IF NOT EXISTS idx_cycles_user_id ON cycles(user_id, start_date);",
		"CREATE TABLE IF NOT EXISTS entries (cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE, iso_date TEXT NOT NULL, temperature_raw DOUBLE PRECISION, temperature_corrected DOUBLE PRECISION, use_corrected BOOLEAN NOT NULL DEFAULT FALSE, mucus_sensation TEXT NOT NULL DEFAULT '', mucus_appearance TEXT NOT NULL DEFAULT '', fertility_symbol TEXT NOT NULL DEFAULT 'none', observations TEXT NOT NULL DEFAULT '', had_relations BOOLEAN NOT NULL DEFAULT FALSE, ignored BOOLEAN NOT NULL DEFAULT FALSE, peak_marker TEXT NOT NULL DEFAULT '', measurements JSONB, PRIMARY KEY (cycle_id, iso_date));",
		"CREATE TABLE IF NOT EXISTS applied_operations (op_id TEXT PRIMARY KEY, user_id TEXT NOT NULL, applied_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_applied_operations_user_id ON applied_operations(user_id);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
