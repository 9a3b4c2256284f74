// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cycletrack/internal/domain"
)

var (
	// ErrCycleNotFound indicates that the requested cycle does not exist.
	ErrCycleNotFound = errors.New("cycle not found")
	// ErrEntryNotFound indicates that no entry is logged on the given day.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidDate indicates a date that does not parse as a civil day.
	ErrInvalidDate = errors.New("invalid date")
	// ErrStartNotAfterPrevious indicates a new cycle start that would break
	// the strictly increasing order of start dates.
	ErrStartNotAfterPrevious = errors.New("cycle start must be after the previous cycle's start")
	// ErrEndBeforeStart indicates a cycle end date before its start date.
	ErrEndBeforeStart = errors.New("cycle end date must not precede its start date")
)

// JournalService is the mutation surface of the cycle journal. Every entry
// mutation is applied to the local replica and appended to the pending queue
// as one persisted unit before any network attempt, so the queue is the sole
// source of truth for re-drain after a crash or offline period.
type JournalService struct {
	replicas domain.ReplicaStore
	remote   domain.RemoteStore
	now      func() time.Time
}

// NewJournalService creates a JournalService backed by the given stores.
func NewJournalService(replicas domain.ReplicaStore, remote domain.RemoteStore) *JournalService {
	return &JournalService{replicas: replicas, remote: remote, now: time.Now}
}

// Replica returns the user's local replica, creating an empty one in memory
// (not persisted) when none exists yet.
func (s *JournalService) Replica(ctx context.Context, userID string) (*domain.LocalReplica, error) {
	rep, err := s.replicas.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		rep = &domain.LocalReplica{UserID: userID}
	}
	return rep, nil
}

// Refresh fetches the user's cycles from the remote store and merges them
// into the replica, leaving the pending queue untouched. Queued operations
// are replayed onto the fetched cycles so optimistic edits stay visible
// until the queue drains. When the remote is unreachable the cached replica
// is returned as-is.
func (s *JournalService) Refresh(ctx context.Context, userID string) (*domain.LocalReplica, error) {
	rep, err := s.Replica(ctx, userID)
	if err != nil {
		return nil, err
	}

	cycles, err := s.remote.ListCycles(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return rep, nil
		}
		return nil, err
	}

	domain.SortCyclesByStart(cycles)
	applyPending(cycles, rep.Pending)
	rep.Cycles = cycles
	rep.LastSyncedAt = s.now().UTC()
	if err := s.replicas.Put(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// applyPending replays queued operations onto freshly fetched cycles, in
// creation order. The remote has not confirmed these yet; without the replay
// a refresh would hide a just-logged entry until the next drain.
func applyPending(cycles []domain.Cycle, pending []domain.PendingOperation) {
	for _, op := range pending {
		var cycle *domain.Cycle
		for i := range cycles {
			if cycles[i].ID == op.CycleID {
				cycle = &cycles[i]
				break
			}
		}
		if cycle == nil {
			continue
		}
		switch op.Type {
		case domain.OpCreateEntry, domain.OpUpdateEntry:
			if op.LocalRecord == nil {
				continue
			}
			if existing := cycle.EntryOn(op.EntryDate); existing != nil {
				*existing = *op.LocalRecord
			} else {
				cycle.Entries = append(cycle.Entries, *op.LocalRecord)
				cycle.SortEntries()
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
	}
}

// UpsertEntry creates or updates the entry logged on e.IsoDate within the
// given cycle, optimistically in the replica, and queues the matching
// operation for the remote store.
func (s *JournalService) UpsertEntry(ctx context.Context, userID, cycleID string, e domain.Entry) error {
	if _, ok := domain.ParseDay(e.IsoDate); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDate, e.IsoDate)
	}
	normalizeEntry(&e)

	rep, err := s.Replica(ctx, userID)
	if err != nil {
		return err
	}
	cycle := rep.CycleByID(cycleID)
	if cycle == nil {
		return ErrCycleNotFound
	}

	opType := domain.OpCreateEntry
	if existing := cycle.EntryOn(e.IsoDate); existing != nil {
		opType = domain.OpUpdateEntry
		*existing = e
	} else {
		cycle.Entries = append(cycle.Entries, e)
		cycle.SortEntries()
	}

	snapshot := e
	rep.Pending = append(rep.Pending, domain.PendingOperation{
		ID:          uuid.NewString(),
		Type:        opType,
		CycleID:     cycleID,
		EntryDate:   e.IsoDate,
		LocalRecord: &snapshot,
		CreatedAt:   s.now().UTC(),
	})
	return s.replicas.Put(ctx, rep)
}

// DeleteEntry removes the entry logged on isoDate. An undrained queued
// create for the same entry is removed together with any queued updates and
// no delete is sent at all; otherwise earlier queued updates and toggles are
// superseded by the delete.
func (s *JournalService) DeleteEntry(ctx context.Context, userID, cycleID, isoDate string) error {
	rep, err := s.Replica(ctx, userID)
	if err != nil {
		return err
	}
	cycle := rep.CycleByID(cycleID)
	if cycle == nil {
		return ErrCycleNotFound
	}
	if cycle.EntryOn(isoDate) == nil {
		return ErrEntryNotFound
	}

	for i := range cycle.Entries {
		if cycle.Entries[i].IsoDate == isoDate {
			cycle.Entries = append(cycle.Entries[:i], cycle.Entries[i+1:]...)
			break
		}
	}

	hadQueuedCreate := false
	kept := rep.Pending[:0]
	for _, op := range rep.Pending {
		if op.CycleID == cycleID && op.EntryDate == isoDate {
			if op.Type == domain.OpCreateEntry {
				hadQueuedCreate = true
			}
			continue
		}
		kept = append(kept, op)
	}
	rep.Pending = kept

	if !hadQueuedCreate {
		rep.Pending = append(rep.Pending, domain.PendingOperation{
			ID:        uuid.NewString(),
			Type:      domain.OpDeleteEntry,
			CycleID:   cycleID,
			EntryDate: isoDate,
			CreatedAt: s.now().UTC(),
		})
	}
	return s.replicas.Put(ctx, rep)
}

// ToggleIgnore flips an entry's exclusion from inference and queues the
// absolute new value, which replays idempotently.
func (s *JournalService) ToggleIgnore(ctx context.Context, userID, cycleID, isoDate string) (bool, error) {
	rep, err := s.Replica(ctx, userID)
	if err != nil {
		return false, err
	}
	cycle := rep.CycleByID(cycleID)
	if cycle == nil {
		return false, ErrCycleNotFound
	}
	entry := cycle.EntryOn(isoDate)
	if entry == nil {
		return false, ErrEntryNotFound
	}

	entry.Ignored = !entry.Ignored
	ignored := entry.Ignored
	rep.Pending = append(rep.Pending, domain.PendingOperation{
		ID:        uuid.NewString(),
		Type:      domain.OpToggleIgnoreEntry,
		CycleID:   cycleID,
		EntryDate: isoDate,
		Ignored:   &ignored,
		CreatedAt: s.now().UTC(),
	})
	if err := s.replicas.Put(ctx, rep); err != nil {
		return false, err
	}
	return ignored, nil
}

// StartCycle closes the open cycle, if any, on the day before startDate and
// opens a new one. Cycle boundary changes go straight to the remote store;
// they are not queued, so they fail fast when it is unreachable.
func (s *JournalService) StartCycle(ctx context.Context, userID, startDate string) (*domain.Cycle, error) {
	if _, ok := domain.ParseDay(startDate); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, startDate)
	}

	rep, err := s.Replica(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Start dates must stay strictly increasing; this is where the sorted,
	// duplicate-free precondition of the validators is enforced.
	for _, c := range rep.Cycles {
		if c.StartDate >= startDate {
			return nil, ErrStartNotAfterPrevious
		}
	}

	if open := rep.OpenCycle(); open != nil {
		open.EndDate = domain.AddDays(startDate, -1)
		if err := s.remote.SaveCycle(ctx, userID, *open); err != nil {
			return nil, err
		}
	}

	cycle := domain.Cycle{ID: uuid.NewString(), StartDate: startDate}
	if err := s.remote.SaveCycle(ctx, userID, cycle); err != nil {
		return nil, err
	}
	rep.Cycles = append(rep.Cycles, cycle)
	domain.SortCyclesByStart(rep.Cycles)
	if err := s.replicas.Put(ctx, rep); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// UpdateCycleDates changes a cycle's start and end dates. Callers are
// expected to have shown the contiguity warning for the draft first.
func (s *JournalService) UpdateCycleDates(ctx context.Context, userID, cycleID, startDate, endDate string) error {
	if _, ok := domain.ParseDay(startDate); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDate, startDate)
	}
	if endDate != "" {
		d, ok := domain.DaysBetween(startDate, endDate)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidDate, endDate)
		}
		if d < 0 {
			return ErrEndBeforeStart
		}
	}

	rep, err := s.Replica(ctx, userID)
	if err != nil {
		return err
	}
	cycle := rep.CycleByID(cycleID)
	if cycle == nil {
		return ErrCycleNotFound
	}
	for _, c := range rep.Cycles {
		if c.ID != cycleID && c.StartDate == startDate {
			return ErrStartNotAfterPrevious
		}
	}

	cycle.StartDate = startDate
	cycle.EndDate = endDate
	if err := s.remote.SaveCycle(ctx, userID, *cycle); err != nil {
		return err
	}
	domain.SortCyclesByStart(rep.Cycles)
	return s.replicas.Put(ctx, rep)
}

// DeleteCycle removes a cycle locally and remotely, dropping any pending
// operations that target it.
func (s *JournalService) DeleteCycle(ctx context.Context, userID, cycleID string) error {
	rep, err := s.Replica(ctx, userID)
	if err != nil {
		return err
	}
	if rep.CycleByID(cycleID) == nil {
		return ErrCycleNotFound
	}
	if err := s.remote.DeleteCycle(ctx, userID, cycleID); err != nil {
		return err
	}

	for i := range rep.Cycles {
		if rep.Cycles[i].ID == cycleID {
			rep.Cycles = append(rep.Cycles[:i], rep.Cycles[i+1:]...)
			break
		}
	}
	kept := rep.Pending[:0]
	for _, op := range rep.Pending {
		if op.CycleID != cycleID {
			kept = append(kept, op)
		}
	}
	rep.Pending = kept
	return s.replicas.Put(ctx, rep)
}

// ResetCache drops the user's local replica.
func (s *JournalService) ResetCache(ctx context.Context, userID string) error {
	return s.replicas.Delete(ctx, userID)
}

// normalizeEntry keeps the entry within its invariants: at most one selected
// measurement survives, and a placeholder never carries a peak marker.
func normalizeEntry(e *domain.Entry) {
	seen := false
	for i := range e.Measurements {
		if e.Measurements[i].Selected {
			if seen {
				e.Measurements[i].Selected = false
			}
			seen = true
		}
	}
	if e.IsPlaceholder() {
		e.PeakMarker = domain.PeakUnset
	}
}
