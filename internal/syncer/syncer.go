package syncer

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"skein/internal/remote"
	"skein/internal/schema"
)

// syncer implements the Syncer interface over a remote.Client.
type syncer struct {
	client *remote.Client
	logger *log.Logger
}

// New creates a Syncer instance.
//
// If logger is nil, a default logger writing to stderr is used.
//
// Example:
//
//	client, err := remote.FromEnv()
//	if err != nil {
//	    return err
//	}
//	s := syncer.New(client, nil)
func New(client *remote.Client, logger *log.Logger) Syncer {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &syncer{client: client, logger: logger}
}

// PushProjects implements Syncer.PushProjects.
func (s *syncer) PushProjects(ctx context.Context, projects []*schema.Project, userID string) PushResult {
	if len(projects) == 0 {
		return PushResult{Success: true, Count: 0}
	}

	rows := make([]projectRow, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, s.projectToRow(p, userID))
	}

	if err := s.client.Upsert(ctx, TableProjects, rows); err != nil {
		s.logger.Printf("ERROR: projects push failed: %v", err)
		return PushResult{Success: false, Count: len(rows), Error: err.Error()}
	}

	s.logger.Printf("Pushed %d project(s)", len(rows))
	return PushResult{Success: true, Count: len(rows)}
}

// PushInventory implements Syncer.PushInventory.
func (s *syncer) PushInventory(ctx context.Context, items []*schema.InventoryItem, userID string) PushResult {
	if len(items) == 0 {
		return PushResult{Success: true, Count: 0}
	}

	rows := make([]itemRow, 0, len(items))
	for _, i := range items {
		rows = append(rows, s.itemToRow(i, userID))
	}

	if err := s.client.Upsert(ctx, TableInventory, rows); err != nil {
		s.logger.Printf("ERROR: inventory push failed: %v", err)
		return PushResult{Success: false, Count: len(rows), Error: err.Error()}
	}

	s.logger.Printf("Pushed %d item(s)", len(rows))
	return PushResult{Success: true, Count: len(rows)}
}

// PullProjects implements Syncer.PullProjects.
func (s *syncer) PullProjects(ctx context.Context, userID string, since *time.Time) ([]*schema.Project, error) {
	filters := pullFilters(userID, "updated_at", since)

	var rows []projectRow
	if err := s.client.Select(ctx, TableProjects, filters, &rows); err != nil {
		return nil, fmt.Errorf("failed to pull projects: %w", err)
	}

	projects := make([]*schema.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, s.projectFromRow(row))
	}

	s.logger.Printf("Pulled %d project(s)", len(projects))
	return projects, nil
}

// PullInventory implements Syncer.PullInventory.
func (s *syncer) PullInventory(ctx context.Context, userID string, since *time.Time) ([]*schema.InventoryItem, error) {
	filters := pullFilters(userID, "last_updated", since)

	var rows []itemRow
	if err := s.client.Select(ctx, TableInventory, filters, &rows); err != nil {
		return nil, fmt.Errorf("failed to pull inventory: %w", err)
	}

	items := make([]*schema.InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.itemFromRow(row))
	}

	s.logger.Printf("Pulled %d item(s)", len(items))
	return items, nil
}

// FullSync implements Syncer.FullSync.
func (s *syncer) FullSync(ctx context.Context, projects []*schema.Project, items []*schema.InventoryItem, userID string, since *time.Time) *Result {
	s.logger.Printf("Starting full sync: %d project(s), %d item(s) local", len(projects), len(items))

	result := &Result{}

	if push := s.PushProjects(ctx, projects, userID); push.Success {
		result.Pushed += push.Count
	} else {
		result.Errors = append(result.Errors, "Projects push: "+push.Error)
	}

	if push := s.PushInventory(ctx, items, userID); push.Success {
		result.Pushed += push.Count
	} else {
		result.Errors = append(result.Errors, "Inventory push: "+push.Error)
	}

	if pulled, err := s.PullProjects(ctx, userID, since); err != nil {
		result.Errors = append(result.Errors, "Projects pull: "+err.Error())
	} else {
		result.Projects = pulled
		result.Pulled += len(pulled)
	}

	if pulled, err := s.PullInventory(ctx, userID, since); err != nil {
		result.Errors = append(result.Errors, "Inventory pull: "+err.Error())
	} else {
		result.Items = pulled
		result.Pulled += len(pulled)
	}

	result.Success = len(result.Errors) == 0

	s.logger.Printf("Full sync complete: pushed=%d pulled=%d errors=%d",
		result.Pushed, result.Pulled, len(result.Errors))
	return result
}

// pullFilters builds the PostgREST filter set for a pull:
// user_id = userID, and watermarkCol > since when since is set.
func pullFilters(userID, watermarkCol string, since *time.Time) url.Values {
	filters := url.Values{}
	filters.Set("user_id", "eq."+userID)
	if since != nil {
		filters.Set(watermarkCol, "gt."+timeToString(*since))
	}
	return filters
}
