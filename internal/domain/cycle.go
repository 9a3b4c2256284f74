package domain

import (
	"context"
	"errors"
	"sort"
)

// ErrUnavailable marks a transient failure of the remote store. Callers
// retry the operation later instead of surfacing it as terminal.
var ErrUnavailable = errors.New("remote store unavailable")

// Cycle is a contiguous fertility cycle for one user. EndDate == "" means
// the cycle is currently open; at most one cycle per user is open.
type Cycle struct {
	ID        string  `json:"id"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate,omitempty"`
	Entries   []Entry `json:"entries,omitempty"`
}

// Open reports whether the cycle has no end date yet.
func (c Cycle) Open() bool {
	return c.EndDate == ""
}

// EntryOn returns a pointer to the entry logged on isoDate, or nil.
func (c *Cycle) EntryOn(isoDate string) *Entry {
	for i := range c.Entries {
		if c.Entries[i].IsoDate == isoDate {
			return &c.Entries[i]
		}
	}
	return nil
}

// SortEntries orders the cycle's entries by date ascending.
func (c *Cycle) SortEntries() {
	sort.Slice(c.Entries, func(i, j int) bool {
		return c.Entries[i].IsoDate < c.Entries[j].IsoDate
	})
}

// SortCyclesByStart orders cycles by start date ascending. Start dates are
// strictly increasing across a user's cycles; a tie is a data-integrity
// error guarded against at the application layer.
func SortCyclesByStart(cycles []Cycle) {
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].StartDate < cycles[j].StartDate
	})
}

// RemoteStore is the port for the remote cycle store. It offers eventual,
// not immediate, consistency; any method may fail with ErrUnavailable.
type RemoteStore interface {
	// ListCycles returns all cycles of a user with entries ordered by date.
	ListCycles(ctx context.Context, userID string) ([]Cycle, error)
	// SaveCycle creates or updates a cycle's metadata (start and end date).
	SaveCycle(ctx context.Context, userID string, c Cycle) error
	// DeleteCycle removes a cycle and its entries.
	DeleteCycle(ctx context.Context, userID, cycleID string) error
	// ApplyEntryOp applies a queued entry mutation. Replaying an operation
	// id that was already applied is a no-op, not a duplicate write.
	ApplyEntryOp(ctx context.Context, userID string, op PendingOperation) error
}
