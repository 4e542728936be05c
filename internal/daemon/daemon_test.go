package daemon

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"skein/internal/schema"
	"skein/internal/store"
	"skein/internal/syncer"
	"skein/internal/syncstate"
)

// fakeSyncer records FullSync inputs and returns a canned result.
type fakeSyncer struct {
	calls    int
	projects []*schema.Project
	items    []*schema.InventoryItem
	userID   string
	since    *time.Time

	result *syncer.Result
}

func (f *fakeSyncer) PushProjects(_ context.Context, _ []*schema.Project, _ string) syncer.PushResult {
	return syncer.PushResult{Success: true}
}

func (f *fakeSyncer) PushInventory(_ context.Context, _ []*schema.InventoryItem, _ string) syncer.PushResult {
	return syncer.PushResult{Success: true}
}

func (f *fakeSyncer) PullProjects(_ context.Context, _ string, _ *time.Time) ([]*schema.Project, error) {
	return nil, nil
}

func (f *fakeSyncer) PullInventory(_ context.Context, _ string, _ *time.Time) ([]*schema.InventoryItem, error) {
	return nil, nil
}

func (f *fakeSyncer) FullSync(_ context.Context, projects []*schema.Project, items []*schema.InventoryItem, userID string, since *time.Time) *syncer.Result {
	f.calls++
	f.projects = projects
	f.items = items
	f.userID = userID
	f.since = since

	// Copy so a daemon mutating the result doesn't alias test state.
	r := *f.result
	return &r
}

func setupDaemon(t *testing.T, fake *fakeSyncer) (*Daemon, *store.Store, *syncstate.DB) {
	t.Helper()

	dir := t.TempDir()
	logger := log.New(io.Discard, "", 0)
	st, err := store.New(dir, logger)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	state, err := syncstate.Open(dir + "/syncstate.db")
	if err != nil {
		t.Fatalf("failed to open state db: %v", err)
	}
	t.Cleanup(func() { _ = state.Close() })
	if err := state.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	config := &Config{
		SyncInterval:     time.Hour,
		DebounceInterval: 50 * time.Millisecond,
		Logger:           logger,
	}
	d, err := New(st, fake, state, "user-1", config, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d, st, state
}

func TestNewValidatesArguments(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	st, err := store.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	fake := &fakeSyncer{result: &syncer.Result{Success: true}}

	if _, err := New(nil, fake, nil, "u", nil, nil); err == nil {
		t.Errorf("expected error for nil store")
	}
	if _, err := New(st, nil, nil, "u", nil, nil); err == nil {
		t.Errorf("expected error for nil syncer")
	}
	if _, err := New(st, fake, nil, "u", nil, nil); err == nil {
		t.Errorf("expected error for nil state")
	}
}

func TestSyncOncePassesLocalState(t *testing.T) {
	fake := &fakeSyncer{result: &syncer.Result{
		Success:  true,
		Projects: []*schema.Project{},
		Items:    []*schema.InventoryItem{},
	}}
	d, st, _ := setupDaemon(t, fake)

	p := schema.NewProject("Granny square blanket")
	if err := st.SaveProjects([]*schema.Project{p}); err != nil {
		t.Fatalf("SaveProjects failed: %v", err)
	}

	if _, err := d.SyncOnce(context.Background()); err != nil {
		t.Fatalf("SyncOnce failed: %v", err)
	}

	if fake.calls != 1 {
		t.Fatalf("expected 1 FullSync call, got %d", fake.calls)
	}
	if len(fake.projects) != 1 || fake.projects[0].ID != p.ID {
		t.Errorf("FullSync did not receive the stored projects")
	}
	if fake.userID != "user-1" {
		t.Errorf("unexpected userID: %s", fake.userID)
	}
	if fake.since != nil {
		t.Errorf("first sync should have a nil watermark, got %v", fake.since)
	}
}

func TestSyncOnceMergesPulledRows(t *testing.T) {
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	local := schema.NewProject("Amigurumi whale")
	local.UpdatedAt = base

	remote := &schema.Project{
		ID:        local.ID,
		Title:     "Amigurumi whale (renamed)",
		Status:    schema.StatusInProgress,
		CreatedAt: local.CreatedAt,
		UpdatedAt: base.Add(time.Hour),
	}
	remoteOnly := schema.NewProject("Market bag")

	fake := &fakeSyncer{result: &syncer.Result{
		Success:  true,
		Pulled:   2,
		Projects: []*schema.Project{remote, remoteOnly},
		Items:    []*schema.InventoryItem{},
	}}
	d, st, _ := setupDaemon(t, fake)

	if err := st.SaveProjects([]*schema.Project{local}); err != nil {
		t.Fatalf("SaveProjects failed: %v", err)
	}

	if _, err := d.SyncOnce(context.Background()); err != nil {
		t.Fatalf("SyncOnce failed: %v", err)
	}

	projects := st.LoadProjects()
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects after merge, got %d", len(projects))
	}
	if projects[0].Title != "Amigurumi whale (renamed)" {
		t.Errorf("newer remote row should have replaced the local one, got %s", projects[0].Title)
	}
	if projects[1].ID != remoteOnly.ID {
		t.Errorf("remote-only row should have been appended")
	}
}

func TestSyncOnceAdvancesWatermarksOnSuccess(t *testing.T) {
	fake := &fakeSyncer{result: &syncer.Result{
		Success:  true,
		Projects: []*schema.Project{},
		Items:    []*schema.InventoryItem{},
	}}
	d, _, state := setupDaemon(t, fake)
	ctx := context.Background()

	before := time.Now()
	if _, err := d.SyncOnce(ctx); err != nil {
		t.Fatalf("SyncOnce failed: %v", err)
	}

	for _, key := range []string{store.KeyProjects, store.KeyInventory} {
		wm, err := state.Watermark(ctx, key)
		if err != nil {
			t.Fatalf("Watermark failed: %v", err)
		}
		if wm == nil {
			t.Fatalf("watermark for %s should be set after a clean sync", key)
		}
		if wm.Before(before.Add(-time.Second)) {
			t.Errorf("watermark for %s too old: %v", key, wm)
		}
	}

	// The second run should pass the stored watermark.
	if _, err := d.SyncOnce(ctx); err != nil {
		t.Fatalf("second SyncOnce failed: %v", err)
	}
	if fake.since == nil {
		t.Errorf("second sync should carry the watermark from the first")
	}
}

func TestSyncOnceKeepsWatermarkOnFailedPull(t *testing.T) {
	fake := &fakeSyncer{result: &syncer.Result{
		Success: false,
		Errors:  []string{"Projects pull: connection refused"},
		Items:   []*schema.InventoryItem{},
		// Projects nil: pull phase failed.
	}}
	d, _, state := setupDaemon(t, fake)
	ctx := context.Background()

	result, err := d.SyncOnce(ctx)
	if err == nil {
		t.Fatalf("expected error from failed sync")
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}

	wm, err := state.Watermark(ctx, store.KeyProjects)
	if err != nil {
		t.Fatalf("Watermark failed: %v", err)
	}
	if wm != nil {
		t.Errorf("failed projects pull must not advance its watermark, got %v", wm)
	}

	// The inventory pull succeeded, so its watermark does advance.
	wm, err = state.Watermark(ctx, store.KeyInventory)
	if err != nil {
		t.Fatalf("Watermark failed: %v", err)
	}
	if wm == nil {
		t.Errorf("successful inventory pull should advance its watermark")
	}
}

func TestSyncOnceRecordsRun(t *testing.T) {
	fake := &fakeSyncer{result: &syncer.Result{
		Success:  true,
		Pushed:   3,
		Pulled:   1,
		Projects: []*schema.Project{},
		Items:    []*schema.InventoryItem{},
	}}
	d, _, state := setupDaemon(t, fake)
	ctx := context.Background()

	if _, err := d.SyncOnce(ctx); err != nil {
		t.Fatalf("SyncOnce failed: %v", err)
	}

	runs, err := state.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Pushed != 3 || runs[0].Pulled != 1 {
		t.Errorf("unexpected run counters: pushed=%d pulled=%d", runs[0].Pushed, runs[0].Pulled)
	}
}

func TestCollectionKey(t *testing.T) {
	tests := []struct {
		path string
		key  string
		ok   bool
	}{
		{"/data/projects.json", store.KeyProjects, true},
		{"/data/inventory.json", store.KeyInventory, true},
		{"/data/projects.json.tmp", "", false},
		{"/data/syncstate.db", "", false},
	}
	for _, tt := range tests {
		key, ok := collectionKey(tt.path)
		if key != tt.key || ok != tt.ok {
			t.Errorf("collectionKey(%s) = (%q, %v), want (%q, %v)", tt.path, key, ok, tt.key, tt.ok)
		}
	}
}

func TestStartStopLifecycle(t *testing.T) {
	fake := &fakeSyncer{result: &syncer.Result{
		Success:  true,
		Projects: []*schema.Project{},
		Items:    []*schema.InventoryItem{},
	}}
	d, _, _ := setupDaemon(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	// Give the initial sync time to run, then shut down.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("daemon did not shut down")
	}

	if fake.calls < 1 {
		t.Errorf("expected at least the initial sync, got %d calls", fake.calls)
	}
}
