// Package daemon runs background synchronization for skein.
//
// The daemon:
//  1. Performs a full remote sync on startup
//  2. Watches the data directory for collection file changes
//  3. Re-syncs after local edits, with debouncing
//  4. Runs a periodic full sync regardless of local activity
//  5. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"skein/internal/schema"
	"skein/internal/store"
	"skein/internal/syncer"
	"skein/internal/syncstate"
)

// Events receives notifications about daemon activity. The dashboard
// handler implements this to broadcast live updates.
type Events interface {
	// OnSyncComplete fires after every sync run, successful or not.
	OnSyncComplete(result *syncer.Result, duration time.Duration)

	// OnCollectionChange fires when a local collection file changes.
	OnCollectionChange(key string)

	// OnStats fires after a sync with current collection sizes.
	OnStats(projects, items int)
}

// Config holds daemon configuration.
type Config struct {
	// SyncInterval is how often a full sync runs without local activity.
	SyncInterval time.Duration

	// DebounceInterval is how long to wait after a local edit before
	// syncing, batching rapid edits together.
	DebounceInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncInterval:     5 * time.Minute,
		DebounceInterval: 2 * time.Second,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates file watching and remote synchronization.
type Daemon struct {
	store  *store.Store
	syncer syncer.Syncer
	state  *syncstate.DB
	userID string
	config *Config
	events Events

	watcher *fsnotify.Watcher

	// pendingAt is the time of the most recent unprocessed local edit;
	// zero when nothing is pending.
	pendingAt  time.Time
	pendingMu  sync.Mutex
	applyingMu sync.Mutex
	applying   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Daemon. The state database must be opened and have its
// schema initialized. events may be nil.
func New(st *store.Store, sy syncer.Syncer, state *syncstate.DB, userID string, config *Config, events Events) (*Daemon, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if sy == nil {
		return nil, fmt.Errorf("syncer cannot be nil")
	}
	if state == nil {
		return nil, fmt.Errorf("state cannot be nil")
	}
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		store:   st,
		syncer:  sy,
		state:   state,
		userID:  userID,
		config:  config,
		events:  events,
		watcher: watcher,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins the daemon's operation. Blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	if _, err := d.SyncOnce(ctx); err != nil {
		d.config.Logger.Printf("WARNING: initial sync failed: %v", err)
	}

	if err := d.watcher.Add(d.store.Dir()); err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}
	d.config.Logger.Printf("Watching: %s", d.store.Dir())

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.syncLoop()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")
	d.cancel()
	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}
	d.wg.Wait()
	d.config.Logger.Println("Daemon stopped")
	return nil
}

// SyncOnce performs one complete sync cycle: load local collections, run a
// full remote sync from the stored watermark, merge pulled rows last-write-
// wins into local state, persist anything that changed, and advance the
// watermarks for the collections whose pull succeeded.
//
// Usable standalone (the CLI's sync command calls it without Start).
func (d *Daemon) SyncOnce(ctx context.Context) (*syncer.Result, error) {
	started := time.Now()

	projects := d.store.LoadProjects()
	items := d.store.LoadInventory()

	since, err := d.watermark(ctx)
	if err != nil {
		d.config.Logger.Printf("WARNING: %v (pulling everything)", err)
	}

	result := d.syncer.FullSync(ctx, projects, items, d.userID, since)

	if err := d.apply(ctx, result, projects, items, started); err != nil {
		result.Errors = append(result.Errors, "Apply: "+err.Error())
		result.Success = false
	}

	duration := time.Since(started)
	if err := d.state.RecordRun(ctx, syncstate.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Pushed:     result.Pushed,
		Pulled:     result.Pulled,
		Errors:     result.Errors,
	}); err != nil {
		d.config.Logger.Printf("WARNING: failed to record sync run: %v", err)
	}

	if d.events != nil {
		d.events.OnSyncComplete(result, duration)
		d.events.OnStats(len(d.store.LoadProjects()), len(d.store.LoadInventory()))
	}

	if !result.Success {
		return result, fmt.Errorf("sync finished with %d error(s)", len(result.Errors))
	}
	return result, nil
}

// watermark returns the pull watermark to use for this run: the earlier of
// the two per-collection watermarks, or nil when either collection has
// never been pulled. Using the earlier bound can only over-fetch, never
// miss rows.
func (d *Daemon) watermark(ctx context.Context) (*time.Time, error) {
	p, err := d.state.Watermark(ctx, store.KeyProjects)
	if err != nil {
		return nil, err
	}
	i, err := d.state.Watermark(ctx, store.KeyInventory)
	if err != nil {
		return nil, err
	}
	if p == nil || i == nil {
		return nil, nil
	}
	if p.Before(*i) {
		return p, nil
	}
	return i, nil
}

// apply merges pulled rows into local state and advances watermarks.
func (d *Daemon) apply(ctx context.Context, result *syncer.Result, projects []*schema.Project, items []*schema.InventoryItem, started time.Time) error {
	d.applyingMu.Lock()
	d.applying = true
	d.applyingMu.Unlock()
	defer func() {
		d.applyingMu.Lock()
		d.applying = false
		d.applyingMu.Unlock()
	}()

	// A nil slice means the pull phase failed; an empty non-nil slice is
	// a successful pull with no changes.
	if result.Projects != nil {
		if len(result.Projects) > 0 {
			merged := syncer.MergeProjects(projects, result.Projects)
			if err := d.store.SaveProjects(merged); err != nil {
				return fmt.Errorf("failed to save merged projects: %w", err)
			}
		}
		if err := d.state.SetWatermark(ctx, store.KeyProjects, started); err != nil {
			return fmt.Errorf("failed to advance projects watermark: %w", err)
		}
	}

	if result.Items != nil {
		if len(result.Items) > 0 {
			merged := syncer.MergeInventory(items, result.Items)
			if err := d.store.SaveInventory(merged); err != nil {
				return fmt.Errorf("failed to save merged inventory: %w", err)
			}
		}
		if err := d.state.SetWatermark(ctx, store.KeyInventory, started); err != nil {
			return fmt.Errorf("failed to advance inventory watermark: %w", err)
		}
	}

	return nil
}

// watchFileEvents monitors the data directory and queues sync triggers.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			key, ok := collectionKey(event.Name)
			if !ok {
				continue
			}

			// Ignore events caused by our own merge writes.
			d.applyingMu.Lock()
			applying := d.applying
			d.applyingMu.Unlock()
			if applying {
				continue
			}

			d.config.Logger.Printf("Local edit: %s (%s)", key, event.Op)
			if d.events != nil {
				d.events.OnCollectionChange(key)
			}

			d.pendingMu.Lock()
			d.pendingAt = time.Now()
			d.pendingMu.Unlock()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// syncLoop runs debounced edit-triggered syncs and the periodic full sync.
func (d *Daemon) syncLoop() {
	defer d.wg.Done()

	tick := time.NewTicker(d.config.DebounceInterval)
	defer tick.Stop()
	periodic := time.NewTicker(d.config.SyncInterval)
	defer periodic.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-tick.C:
			d.pendingMu.Lock()
			pending := !d.pendingAt.IsZero() && time.Since(d.pendingAt) >= d.config.DebounceInterval
			if pending {
				d.pendingAt = time.Time{}
			}
			d.pendingMu.Unlock()

			if pending {
				if _, err := d.SyncOnce(d.ctx); err != nil {
					d.config.Logger.Printf("Edit-triggered sync failed: %v", err)
				}
			}

		case <-periodic.C:
			if _, err := d.SyncOnce(d.ctx); err != nil {
				d.config.Logger.Printf("Periodic sync failed: %v", err)
			}
		}
	}
}

// collectionKey maps a data-directory file path to its storage key.
func collectionKey(path string) (string, bool) {
	switch filepath.Base(path) {
	case store.KeyProjects + ".json":
		return store.KeyProjects, true
	case store.KeyInventory + ".json":
		return store.KeyInventory, true
	}
	return "", false
}
