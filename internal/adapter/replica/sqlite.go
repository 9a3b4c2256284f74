// Package replica implements the durable local replica store on SQLite.
// The replica is what survives restarts and offline periods, so it lives in
// a single file next to the application rather than behind the network.
package replica

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"cycletrack/internal/domain"
)

// Store wraps a *sql.DB and implements domain.ReplicaStore. Each user's
// replica is one JSON blob replaced atomically on every write.
type Store struct {
	sql *sql.DB
}

// Ensure interface is met.
var _ domain.ReplicaStore = (*Store)(nil)

// Open opens (or creates) the replica database at path and migrates it.
func Open(path string) (*Store, error) {
	s, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent mutation and sync.
	s.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	st := &Store{sql: s}
	if err := st.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.sql.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS replicas (user_id TEXT PRIMARY KEY, payload BLOB NOT NULL, updated_at TEXT NOT NULL);")
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Get loads a user's replica. A missing replica is (nil, nil).
func (s *Store) Get(ctx context.Context, userID string) (*domain.LocalReplica, error) {
	var payload []byte
	err := s.sql.QueryRowContext(ctx,
		"SELECT payload FROM replicas WHERE user_id=$1;", userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rep domain.LocalReplica
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("replica for %s: %w", userID, err)
	}
	return &rep, nil
}

// Put replaces a user's replica as one persisted unit.
func (s *Store) Put(ctx context.Context, rep *domain.LocalReplica) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = s.sql.ExecContext(ctx,
		`INSERT INTO replicas(user_id, payload, updated_at) VALUES($1, $2, $3)
		 ON CONFLICT(user_id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at;`,
		rep.UserID, payload, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete drops a user's replica.
func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.sql.ExecContext(ctx, "DELETE FROM replicas WHERE user_id=$1;", userID)
	return err
}

// ListUsers returns the ids of all users holding a replica.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.sql.QueryContext(ctx, "SELECT user_id FROM replicas ORDER BY user_id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
