// Package memory implements in-memory stores for development and testing.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"cycletrack/internal/domain"
)

// RemoteDB implements an in-memory remote cycle store. SetOnline(false)
// makes every method fail with domain.ErrUnavailable, which is how tests
// and the dev setup simulate an unreachable remote.
type RemoteDB struct {
	mu      sync.Mutex
	cycles  map[string][]domain.Cycle // by user id
	applied map[string]bool           // operation ids already applied
	online  bool
}

// NewRemote creates an online in-memory remote store.
func NewRemote() *RemoteDB {
	return &RemoteDB{
		cycles:  make(map[string][]domain.Cycle),
		applied: make(map[string]bool),
		online:  true,
	}
}

// Ensure interfaces are met.
var _ domain.RemoteStore = (*RemoteDB)(nil)
var _ domain.ReplicaStore = (*ReplicaDB)(nil)

// SetOnline toggles reachability of the fake remote.
func (db *RemoteDB) SetOnline(online bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.online = online
}

// AppliedCount returns how many distinct operation ids have been applied.
func (db *RemoteDB) AppliedCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.applied)
}

// ListCycles returns deep copies of the user's cycles sorted by start date.
func (db *RemoteDB) ListCycles(ctx context.Context, userID string) ([]domain.Cycle, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.online {
		return nil, domain.ErrUnavailable
	}

	src := db.cycles[userID]
	out := make([]domain.Cycle, len(src))
	for i, c := range src {
		out[i] = copyCycle(c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out, nil
}

// SaveCycle creates or updates a cycle's metadata, keeping its entries.
func (db *RemoteDB) SaveCycle(ctx context.Context, userID string, c domain.Cycle) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.online {
		return domain.ErrUnavailable
	}

	list := db.cycles[userID]
	for i := range list {
		if list[i].ID == c.ID {
			list[i].StartDate = c.StartDate
			list[i].EndDate = c.EndDate
			return nil
		}
	}
	db.cycles[userID] = append(list, copyCycle(c))
	return nil
}

// DeleteCycle removes a cycle and its entries.
func (db *RemoteDB) DeleteCycle(ctx context.Context, userID, cycleID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.online {
		return domain.ErrUnavailable
	}

	list := db.cycles[userID]
	for i := range list {
		if list[i].ID == cycleID {
			db.cycles[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

// ApplyEntryOp applies a queued entry mutation. An operation id that was
// already recorded is a no-op.
func (db *RemoteDB) ApplyEntryOp(ctx context.Context, userID string, op domain.PendingOperation) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.online {
		return domain.ErrUnavailable
	}
	if db.applied[op.ID] {
		return nil
	}

	list := db.cycles[userID]
	var cycle *domain.Cycle
	for i := range list {
		if list[i].ID == op.CycleID {
			cycle = &list[i]
			break
		}
	}
	if cycle == nil {
		// The cycle was created by a boundary operation that has not
		// reached this store; materialize it so the entry is not lost.
		db.cycles[userID] = append(list, domain.Cycle{ID: op.CycleID})
		cycle = &db.cycles[userID][len(db.cycles[userID])-1]
	}

	switch op.Type {
	case domain.OpCreateEntry, domain.OpUpdateEntry:
		if op.LocalRecord != nil {
			if existing := cycle.EntryOn(op.EntryDate); existing != nil {
				*existing = *op.LocalRecord
			} else {
				cycle.Entries = append(cycle.Entries, *op.LocalRecord)
				cycle.SortEntries()
			}
		}
	case domain.OpDeleteEntry:
		for i := range cycle.Entries {
			if cycle.Entries[i].IsoDate == op.EntryDate {
				cycle.Entries = append(cycle.Entries[:i], cycle.Entries[i+1:]...)
				break
			}
		}
	case domain.OpToggleIgnoreEntry:
		if e := cycle.EntryOn(op.EntryDate); e != nil && op.Ignored != nil {
			e.Ignored = *op.Ignored
		}
	}

	db.applied[op.ID] = true
	return nil
}

func copyCycle(c domain.Cycle) domain.Cycle {
	out := c
	out.Entries = make([]domain.Entry, len(c.Entries))
	copy(out.Entries, c.Entries)
	return out
}

// ReplicaDB implements an in-memory replica store. Replicas are stored as
// JSON blobs so tests exercise the same serialization the durable store
// uses.
type ReplicaDB struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewReplica creates an in-memory replica store.
func NewReplica() *ReplicaDB {
	return &ReplicaDB{blobs: make(map[string][]byte)}
}

// Get loads a user's replica; missing replicas are (nil, nil).
func (db *ReplicaDB) Get(ctx context.Context, userID string) (*domain.LocalReplica, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	blob, ok := db.blobs[userID]
	if !ok {
		return nil, nil
	}
	var rep domain.LocalReplica
	if err := json.Unmarshal(blob, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Put replaces a user's replica.
func (db *ReplicaDB) Put(ctx context.Context, rep *domain.LocalReplica) error {
	blob, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.blobs[rep.UserID] = blob
	return nil
}

// Delete drops a user's replica.
func (db *ReplicaDB) Delete(ctx context.Context, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.blobs, userID)
	return nil
}

// ListUsers returns the ids of users holding a replica, sorted.
func (db *ReplicaDB) ListUsers(ctx context.Context) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]string, 0, len(db.blobs))
	for id := range db.blobs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
