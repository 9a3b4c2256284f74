package app

import (
	"context"
	"errors"
	"time"

	"cycletrack/internal/domain"
)

// ErrOperationNotFound indicates a discard request for an unknown queued
// operation.
var ErrOperationNotFound = errors.New("pending operation not found")

// SyncRecorder receives sync telemetry. The prometheus collector implements
// it; a nil recorder disables recording.
type SyncRecorder interface {
	OperationApplied(opType string)
	OperationFailed(opType string)
	QueueDepth(userID string, depth int)
	DrainDuration(d time.Duration)
}

// SyncService drains the pending-operation queue against the remote store.
// Operations replay strictly in creation order: operation n+1 is never sent
// before operation n has succeeded or been explicitly discarded, preserving
// last-write-wins semantics on the remote side.
type SyncService struct {
	replicas domain.ReplicaStore
	remote   domain.RemoteStore
	recorder SyncRecorder
	now      func() time.Time
}

// NewSyncService creates a SyncService. recorder may be nil.
func NewSyncService(replicas domain.ReplicaStore, remote domain.RemoteStore, recorder SyncRecorder) *SyncService {
	return &SyncService{replicas: replicas, remote: remote, recorder: recorder, now: time.Now}
}

// Drain replays the user's queued operations in order. It returns the number
// of operations confirmed remotely. A failing operation stays at the head of
// the queue and stops the drain; the returned error reports why. The replica
// is re-persisted after every confirmed operation, so a crash mid-drain
// never replays more than one already-confirmed operation, which the remote
// ignores by operation id anyway.
func (s *SyncService) Drain(ctx context.Context, userID string) (int, error) {
	rep, err := s.replicas.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if rep == nil || len(rep.Pending) == 0 {
		s.recordDepth(userID, 0)
		return 0, nil
	}

	start := s.now()
	applied := 0
	for len(rep.Pending) > 0 {
		if err := ctx.Err(); err != nil {
			break
		}
		op := rep.Pending[0]
		if err := s.remote.ApplyEntryOp(ctx, userID, op); err != nil {
			if s.recorder != nil {
				s.recorder.OperationFailed(string(op.Type))
			}
			s.finishDrain(userID, rep, start)
			return applied, err
		}
		rep.Pending = rep.Pending[1:]
		applied++
		if s.recorder != nil {
			s.recorder.OperationApplied(string(op.Type))
		}
		if err := s.replicas.Put(ctx, rep); err != nil {
			return applied, err
		}
	}

	if len(rep.Pending) == 0 {
		rep.LastSyncedAt = s.now().UTC()
		if err := s.replicas.Put(ctx, rep); err != nil {
			return applied, err
		}
	}
	s.finishDrain(userID, rep, start)
	return applied, nil
}

// Discard abandons one queued operation without sending it. The operation is
// only ever removed here or after remote confirmation, never silently.
func (s *SyncService) Discard(ctx context.Context, userID, opID string) error {
	rep, err := s.replicas.Get(ctx, userID)
	if err != nil {
		return err
	}
	if rep == nil {
		return ErrOperationNotFound
	}
	for i, op := range rep.Pending {
		if op.ID == opID {
			rep.Pending = append(rep.Pending[:i], rep.Pending[i+1:]...)
			return s.replicas.Put(ctx, rep)
		}
	}
	return ErrOperationNotFound
}

// QueueDepth reports the number of undrained operations for a user.
func (s *SyncService) QueueDepth(ctx context.Context, userID string) (int, error) {
	rep, err := s.replicas.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if rep == nil {
		return 0, nil
	}
	return len(rep.Pending), nil
}

func (s *SyncService) finishDrain(userID string, rep *domain.LocalReplica, start time.Time) {
	s.recordDepth(userID, len(rep.Pending))
	if s.recorder != nil {
		s.recorder.DrainDuration(s.now().Sub(start))
	}
}

func (s *SyncService) recordDepth(userID string, depth int) {
	if s.recorder != nil {
		s.recorder.QueueDepth(userID, depth)
	}
}
