package domain

import (
	"context"
	"time"
)

// LocalReplica is the offline source of truth for one user: the cached
// cycles plus the FIFO queue of mutations not yet confirmed remotely.
type LocalReplica struct {
	UserID       string             `json:"userId"`
	Cycles       []Cycle            `json:"cycles"`
	Pending      []PendingOperation `json:"pendingOperations"`
	LastSyncedAt time.Time          `json:"lastSyncedAt"`
}

// CycleByID returns a pointer to the cycle with the given id, or nil.
func (r *LocalReplica) CycleByID(id string) *Cycle {
	for i := range r.Cycles {
		if r.Cycles[i].ID == id {
			return &r.Cycles[i]
		}
	}
	return nil
}

// OpenCycle returns the cycle without an end date, or nil.
func (r *LocalReplica) OpenCycle() *Cycle {
	for i := range r.Cycles {
		if r.Cycles[i].Open() {
			return &r.Cycles[i]
		}
	}
	return nil
}

// ReplicaStore is the port for durable per-user replica persistence. The
// blob survives process restarts and offline periods.
type ReplicaStore interface {
	// Get loads a user's replica. A missing replica is (nil, nil).
	Get(ctx context.Context, userID string) (*LocalReplica, error)
	// Put replaces a user's replica as one persisted unit.
	Put(ctx context.Context, r *LocalReplica) error
	// Delete drops a user's replica (logout or explicit cache reset).
	Delete(ctx context.Context, userID string) error
	// ListUsers returns the ids of all users holding a replica.
	ListUsers(ctx context.Context) ([]string, error)
}
