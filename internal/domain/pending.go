package domain

import "time"

// OperationType identifies a queued local mutation.
type OperationType string

// Queued operation types.
const (
	OpCreateEntry       OperationType = "create-entry"
	OpUpdateEntry       OperationType = "update-entry"
	OpDeleteEntry       OperationType = "delete-entry"
	OpToggleIgnoreEntry OperationType = "toggle-ignore-entry"
)

// PendingOperation is a locally recorded mutation awaiting confirmation
// against the remote store. IDs are client-generated and never reused, so
// the remote side can replay them idempotently.
type PendingOperation struct {
	ID        string        `json:"id"`
	Type      OperationType `json:"type"`
	CycleID   string        `json:"cycleId"`
	EntryDate string        `json:"entryDate"`
	Ignored   *bool         `json:"ignored,omitempty"`
	// LocalRecord is the optimistic entry snapshot applied locally.
	// Set for create and update operations.
	LocalRecord *Entry    `json:"localRecord,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
