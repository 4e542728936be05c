// Package syncer reconciles the local collections with the Supabase backend
// using a push-then-pull, last-write-wins strategy.
//
// Push maps local records to their snake_case row shapes and issues one
// batched upsert per collection, keyed on id. Pull fetches the user's rows,
// optionally only those modified after a watermark timestamp, and maps them
// back to local shapes. Conflicts are resolved by timestamp alone: the
// record with the later modification time wins, with no field-level merge.
package syncer

import (
	"context"
	"time"

	"skein/internal/schema"
)

// PushResult reports the outcome of a single push phase.
type PushResult struct {
	Success bool
	// Count is the number of rows in the upsert batch.
	Count int
	// Error holds the failure message when Success is false.
	Error string
}

// Result aggregates a full sync run. Success is true only when Errors is
// empty; individual phase failures do not stop the remaining phases.
type Result struct {
	Success bool
	Pushed  int
	Pulled  int
	Errors  []string

	// Rows fetched by the pull phases, already mapped to local shapes.
	// The caller merges these into local state (see MergeProjects and
	// MergeInventory).
	Projects []*schema.Project
	Items    []*schema.InventoryItem
}

// Syncer moves the two collections between local state and the remote store.
type Syncer interface {
	// PushProjects upserts the given projects for the user. An empty
	// input short-circuits as success with zero count, without a
	// network call.
	PushProjects(ctx context.Context, projects []*schema.Project, userID string) PushResult

	// PushInventory upserts the given inventory items for the user.
	// Same empty-input short-circuit as PushProjects.
	PushInventory(ctx context.Context, items []*schema.InventoryItem, userID string) PushResult

	// PullProjects fetches the user's projects, restricted to rows whose
	// remote updated_at is strictly after since when since is non-nil.
	PullProjects(ctx context.Context, userID string, since *time.Time) ([]*schema.Project, error)

	// PullInventory fetches the user's inventory items, watermarked on
	// the remote last_updated column.
	PullInventory(ctx context.Context, userID string, since *time.Time) ([]*schema.InventoryItem, error)

	// FullSync runs push projects, push inventory, pull projects, pull
	// inventory, in that order, unconditionally. Per-phase errors are
	// accumulated into Result.Errors rather than aborting the run.
	FullSync(ctx context.Context, projects []*schema.Project, items []*schema.InventoryItem, userID string, since *time.Time) *Result
}
