package app_test

import (
	"context"
	"errors"
	"testing"

	"cycletrack/internal/adapter/memory"
	"cycletrack/internal/app"
	"cycletrack/internal/domain"
)

func f(v float64) *float64 { return &v }

func seedReplica(t *testing.T, replicas domain.ReplicaStore, cycles ...domain.Cycle) {
	t.Helper()
	err := replicas.Put(context.Background(), &domain.LocalReplica{UserID: "ana", Cycles: cycles})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func loadReplica(t *testing.T, replicas domain.ReplicaStore) *domain.LocalReplica {
	t.Helper()
	rep, err := replicas.Get(context.Background(), "ana")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rep == nil {
		t.Fatal("replica missing")
	}
	return rep
}

func TestUpsertEntry_CreateThenUpdate(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	entry := domain.Entry{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)}
	if err := svc.UpsertEntry(context.Background(), "ana", "c1", entry); err != nil {
		t.Fatalf("create: %v", err)
	}

	entry.TemperatureRaw = f(36.6)
	if err := svc.UpsertEntry(context.Background(), "ana", "c1", entry); err != nil {
		t.Fatalf("update: %v", err)
	}

	rep := loadReplica(t, replicas)
	cycle := rep.CycleByID("c1")
	if len(cycle.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(cycle.Entries))
	}
	if *cycle.Entries[0].TemperatureRaw != 36.6 {
		t.Fatalf("entry not updated in place: %+v", cycle.Entries[0])
	}
	if len(rep.Pending) != 2 {
		t.Fatalf("expected two queued operations, got %d", len(rep.Pending))
	}
	if rep.Pending[0].Type != domain.OpCreateEntry || rep.Pending[1].Type != domain.OpUpdateEntry {
		t.Fatalf("operation types: %s, %s", rep.Pending[0].Type, rep.Pending[1].Type)
	}
	if rep.Pending[0].ID == rep.Pending[1].ID {
		t.Fatal("operation ids must be unique")
	}
}

func TestUpsertEntry_EntriesStaySorted(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	for _, day := range []string{"2024-03-07", "2024-03-03", "2024-03-05"} {
		if err := svc.UpsertEntry(context.Background(), "ana", "c1", domain.Entry{IsoDate: day, TemperatureRaw: f(36.4)}); err != nil {
			t.Fatalf("upsert %s: %v", day, err)
		}
	}

	cycle := loadReplica(t, replicas).CycleByID("c1")
	want := []string{"2024-03-03", "2024-03-05", "2024-03-07"}
	for i, w := range want {
		if cycle.Entries[i].IsoDate != w {
			t.Fatalf("entries out of order: %+v", cycle.Entries)
		}
	}
}

func TestUpsertEntry_NormalizesInvariants(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	entry := domain.Entry{
		IsoDate: "2024-03-05",
		Measurements: []domain.Measurement{
			{Time: "06:30", Temperature: 36.4, Selected: true},
			{Time: "07:00", Temperature: 36.6, Selected: true},
		},
	}
	if err := svc.UpsertEntry(context.Background(), "ana", "c1", entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got := loadReplica(t, replicas).CycleByID("c1").Entries[0]
	if !got.Measurements[0].Selected || got.Measurements[1].Selected {
		t.Fatalf("only the first selected measurement survives: %+v", got.Measurements)
	}

	// A placeholder never carries a peak marker.
	placeholder := domain.Entry{IsoDate: "2024-03-06", PeakMarker: domain.PeakDay}
	if err := svc.UpsertEntry(context.Background(), "ana", "c1", placeholder); err != nil {
		t.Fatalf("upsert placeholder: %v", err)
	}
	got = *loadReplica(t, replicas).CycleByID("c1").EntryOn("2024-03-06")
	if got.PeakMarker != domain.PeakUnset {
		t.Fatalf("placeholder kept its peak marker: %+v", got)
	}
}

func TestUpsertEntry_Validation(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	err := svc.UpsertEntry(context.Background(), "ana", "c1", domain.Entry{IsoDate: "garbage"})
	if !errors.Is(err, app.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	err = svc.UpsertEntry(context.Background(), "ana", "nope", domain.Entry{IsoDate: "2024-03-05"})
	if !errors.Is(err, app.ErrCycleNotFound) {
		t.Fatalf("expected ErrCycleNotFound, got %v", err)
	}
}

func TestDeleteEntry_DropsUndrainedCreate(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	entry := domain.Entry{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)}
	if err := svc.UpsertEntry(context.Background(), "ana", "c1", entry); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteEntry(context.Background(), "ana", "c1", "2024-03-05"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rep := loadReplica(t, replicas)
	if len(rep.Pending) != 0 {
		t.Fatalf("create followed by delete must leave no queued work: %+v", rep.Pending)
	}
	if rep.CycleByID("c1").EntryOn("2024-03-05") != nil {
		t.Fatal("entry still present locally")
	}
}

func TestDeleteEntry_SupersedesQueuedUpdate(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	// The entry already exists remotely; only an update is queued.
	seedReplica(t, replicas, domain.Cycle{
		ID:        "c1",
		StartDate: "2024-03-01",
		Entries:   []domain.Entry{{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)}},
	})

	update := domain.Entry{IsoDate: "2024-03-05", TemperatureRaw: f(36.6)}
	if err := svc.UpsertEntry(context.Background(), "ana", "c1", update); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeleteEntry(context.Background(), "ana", "c1", "2024-03-05"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rep := loadReplica(t, replicas)
	if len(rep.Pending) != 1 || rep.Pending[0].Type != domain.OpDeleteEntry {
		t.Fatalf("update must be superseded by a single delete: %+v", rep.Pending)
	}
}

func TestToggleIgnore(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas, domain.Cycle{
		ID:        "c1",
		StartDate: "2024-03-01",
		Entries:   []domain.Entry{{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)}},
	})

	ignored, err := svc.ToggleIgnore(context.Background(), "ana", "c1", "2024-03-05")
	if err != nil || !ignored {
		t.Fatalf("first toggle: %v, %v", ignored, err)
	}
	ignored, err = svc.ToggleIgnore(context.Background(), "ana", "c1", "2024-03-05")
	if err != nil || ignored {
		t.Fatalf("second toggle: %v, %v", ignored, err)
	}

	rep := loadReplica(t, replicas)
	if len(rep.Pending) != 2 {
		t.Fatalf("expected two queued toggles, got %d", len(rep.Pending))
	}
	if *rep.Pending[0].Ignored != true || *rep.Pending[1].Ignored != false {
		t.Fatalf("toggles must carry absolute values: %+v", rep.Pending)
	}
}

func TestStartCycle_ClosesOpenCycle(t *testing.T) {
	replicas := memory.NewReplica()
	remote := memory.NewRemote()
	svc := app.NewJournalService(replicas, remote)
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	cycle, err := svc.StartCycle(context.Background(), "ana", "2024-03-29")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	rep := loadReplica(t, replicas)
	if got := rep.CycleByID("c1").EndDate; got != "2024-03-28" {
		t.Fatalf("previous cycle must close the day before: %q", got)
	}
	if open := rep.OpenCycle(); open == nil || open.ID != cycle.ID {
		t.Fatalf("new cycle must be the only open one: %+v", open)
	}
}

func TestStartCycle_RejectsNonIncreasingStart(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	for _, start := range []string{"2024-03-01", "2024-02-20"} {
		_, err := svc.StartCycle(context.Background(), "ana", start)
		if !errors.Is(err, app.ErrStartNotAfterPrevious) {
			t.Fatalf("start %s: expected ErrStartNotAfterPrevious, got %v", start, err)
		}
	}
}

func TestStartCycle_FailsFastWhenRemoteUnreachable(t *testing.T) {
	replicas := memory.NewReplica()
	remote := memory.NewRemote()
	remote.SetOnline(false)
	svc := app.NewJournalService(replicas, remote)
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	_, err := svc.StartCycle(context.Background(), "ana", "2024-03-29")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	// Boundary changes are not queued, so nothing may persist locally.
	rep := loadReplica(t, replicas)
	if len(rep.Cycles) != 1 {
		t.Fatalf("replica must be unchanged: %+v", rep.Cycles)
	}
}

func TestDeleteCycle_DropsPendingOpsForIt(t *testing.T) {
	replicas := memory.NewReplica()
	svc := app.NewJournalService(replicas, memory.NewRemote())
	seedReplica(t, replicas,
		domain.Cycle{ID: "c1", StartDate: "2024-02-01", EndDate: "2024-02-28"},
		domain.Cycle{ID: "c2", StartDate: "2024-03-01"},
	)
	if err := svc.UpsertEntry(context.Background(), "ana", "c2", domain.Entry{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := svc.DeleteCycle(context.Background(), "ana", "c2"); err != nil {
		t.Fatalf("delete cycle: %v", err)
	}
	rep := loadReplica(t, replicas)
	if rep.CycleByID("c2") != nil || len(rep.Pending) != 0 {
		t.Fatalf("cycle and its queued work must be gone: %+v", rep)
	}
}

func TestRefresh_MergesRemoteKeepingQueue(t *testing.T) {
	replicas := memory.NewReplica()
	remote := memory.NewRemote()
	svc := app.NewJournalService(replicas, remote)

	if err := remote.SaveCycle(context.Background(), "ana", domain.Cycle{ID: "c1", StartDate: "2024-03-01"}); err != nil {
		t.Fatalf("seed remote: %v", err)
	}
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})
	if err := svc.UpsertEntry(context.Background(), "ana", "c1", domain.Entry{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rep, err := svc.Refresh(context.Background(), "ana")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(rep.Pending) != 1 {
		t.Fatalf("refresh must not touch the pending queue: %+v", rep.Pending)
	}
	// The remote has not seen the entry yet; the refreshed view must still
	// show it.
	entry := rep.CycleByID("c1").EntryOn("2024-03-05")
	if entry == nil || *entry.TemperatureRaw != 36.4 {
		t.Fatalf("optimistic entry hidden by refresh: %+v", rep.CycleByID("c1").Entries)
	}
	if rep.LastSyncedAt.IsZero() {
		t.Fatal("refresh must stamp lastSyncedAt")
	}
}

func TestRefresh_ReplaysQueuedDeleteAndToggle(t *testing.T) {
	replicas := memory.NewReplica()
	remote := memory.NewRemote()
	svc := app.NewJournalService(replicas, remote)

	// The remote still holds both entries; locally one is deleted and one
	// has ignore toggled, neither drained yet.
	remoteCycle := domain.Cycle{
		ID:        "c1",
		StartDate: "2024-03-01",
		Entries: []domain.Entry{
			{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)},
			{IsoDate: "2024-03-06", TemperatureRaw: f(36.5)},
		},
	}
	if err := remote.SaveCycle(context.Background(), "ana", remoteCycle); err != nil {
		t.Fatalf("seed remote: %v", err)
	}
	seedReplica(t, replicas, remoteCycle)

	if err := svc.DeleteEntry(context.Background(), "ana", "c1", "2024-03-05"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.ToggleIgnore(context.Background(), "ana", "c1", "2024-03-06"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	rep, err := svc.Refresh(context.Background(), "ana")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	cycle := rep.CycleByID("c1")
	if cycle.EntryOn("2024-03-05") != nil {
		t.Fatalf("deleted entry resurrected by refresh: %+v", cycle.Entries)
	}
	if e := cycle.EntryOn("2024-03-06"); e == nil || !e.Ignored {
		t.Fatalf("queued toggle lost by refresh: %+v", e)
	}
}

func TestRefresh_OfflineServesCache(t *testing.T) {
	replicas := memory.NewReplica()
	remote := memory.NewRemote()
	remote.SetOnline(false)
	svc := app.NewJournalService(replicas, remote)
	seedReplica(t, replicas, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	rep, err := svc.Refresh(context.Background(), "ana")
	if err != nil {
		t.Fatalf("offline refresh must not fail: %v", err)
	}
	if len(rep.Cycles) != 1 || rep.Cycles[0].ID != "c1" {
		t.Fatalf("cached cycles expected: %+v", rep.Cycles)
	}
}

// mutation and queue append must reach the store as one persisted unit.
func TestUpsertEntry_SinglePut(t *testing.T) {
	inner := memory.NewReplica()
	counting := &countingReplicaStore{ReplicaStore: inner}
	svc := app.NewJournalService(counting, memory.NewRemote())
	seedReplica(t, inner, domain.Cycle{ID: "c1", StartDate: "2024-03-01"})

	if err := svc.UpsertEntry(context.Background(), "ana", "c1", domain.Entry{IsoDate: "2024-03-05", TemperatureRaw: f(36.4)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if counting.puts != 1 {
		t.Fatalf("expected exactly one Put, got %d", counting.puts)
	}
}

type countingReplicaStore struct {
	domain.ReplicaStore
	puts int
}

func (c *countingReplicaStore) Put(ctx context.Context, rep *domain.LocalReplica) error {
	c.puts++
	return c.ReplicaStore.Put(ctx, rep)
}
