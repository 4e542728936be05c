package linksync

import (
	"fmt"
	"log"
	"os"

	"skein/internal/schema"
)

// service implements the Service interface.
type service struct {
	store  Store
	logger *log.Logger
}

// New creates a Service over the given store.
//
// If logger is nil, a default logger writing to stderr is used.
func New(store Store, logger *log.Logger) Service {
	if logger == nil {
		logger = log.New(os.Stderr, "[linksync] ", log.LstdFlags)
	}
	return &service{store: store, logger: logger}
}

// SyncProjectMaterials implements Service.SyncProjectMaterials.
func (s *service) SyncProjectMaterials(projectID string, newYarnIDs, newHookIDs, oldYarnIDs, oldHookIDs []string) ([]*schema.InventoryItem, error) {
	added := union(diff(newYarnIDs, oldYarnIDs), diff(newHookIDs, oldHookIDs))
	removed := union(diff(oldYarnIDs, newYarnIDs), diff(oldHookIDs, newHookIDs))

	items := s.store.LoadInventory()

	// Fast path: nothing changed, nothing to write.
	if len(added) == 0 && len(removed) == 0 {
		return items, nil
	}

	changed := 0
	for _, item := range items {
		// "other" items never link to projects.
		if !item.Category.Linkable() {
			continue
		}
		switch {
		case added[item.ID]:
			if !item.UsedIn(projectID) {
				item.UsedInProjects = append(item.UsedInProjects, projectID)
				item.Touch()
				changed++
			}
		case removed[item.ID]:
			if item.UsedIn(projectID) {
				item.UsedInProjects = removeString(item.UsedInProjects, projectID)
				item.Touch()
				changed++
			}
		}
	}

	if changed == 0 {
		return items, nil
	}

	if err := s.store.SaveInventory(items); err != nil {
		s.logger.Printf("ERROR: failed to persist inventory after material sync for project %s: %v", projectID, err)
		return nil, fmt.Errorf("failed to save inventory: %w", err)
	}

	s.logger.Printf("Synced materials for project %s: %d item(s) updated", projectID, changed)
	return items, nil
}

// RemoveProjectFromInventory implements Service.RemoveProjectFromInventory.
func (s *service) RemoveProjectFromInventory(projectID string) ([]*schema.InventoryItem, error) {
	items := s.store.LoadInventory()

	changed := 0
	for _, item := range items {
		if item.UsedIn(projectID) {
			item.UsedInProjects = removeString(item.UsedInProjects, projectID)
			item.Touch()
			changed++
		}
	}

	if changed == 0 {
		return items, nil
	}

	if err := s.store.SaveInventory(items); err != nil {
		s.logger.Printf("ERROR: failed to persist inventory after removing project %s: %v", projectID, err)
		return nil, fmt.Errorf("failed to save inventory: %w", err)
	}

	s.logger.Printf("Removed project %s from %d item(s)", projectID, changed)
	return items, nil
}

// SyncInventoryToProjects implements Service.SyncInventoryToProjects.
func (s *service) SyncInventoryToProjects(itemID string, category schema.Category, newProjectIDs, oldProjectIDs []string) ([]*schema.Project, error) {
	projects := s.store.LoadProjects()

	if !category.Linkable() {
		return projects, nil
	}

	added := diff(newProjectIDs, oldProjectIDs)
	removed := diff(oldProjectIDs, newProjectIDs)
	if len(added) == 0 && len(removed) == 0 {
		return projects, nil
	}

	changed := 0
	for _, project := range projects {
		target := targetList(project, category)
		switch {
		case added[project.ID]:
			if !contains(*target, itemID) {
				*target = append(*target, itemID)
				project.Touch()
				changed++
			}
		case removed[project.ID]:
			if contains(*target, itemID) {
				*target = removeString(*target, itemID)
				project.Touch()
				changed++
			}
		}
	}

	if changed == 0 {
		return projects, nil
	}

	if err := s.store.SaveProjects(projects); err != nil {
		s.logger.Printf("ERROR: failed to persist projects after syncing item %s: %v", itemID, err)
		return nil, fmt.Errorf("failed to save projects: %w", err)
	}

	s.logger.Printf("Synced item %s (%s) to projects: %d project(s) updated", itemID, category, changed)
	return projects, nil
}

// RemoveInventoryFromProjects implements Service.RemoveInventoryFromProjects.
func (s *service) RemoveInventoryFromProjects(itemID string, category schema.Category) ([]*schema.Project, error) {
	projects := s.store.LoadProjects()

	if !category.Linkable() {
		return projects, nil
	}

	changed := 0
	for _, project := range projects {
		target := targetList(project, category)
		if contains(*target, itemID) {
			*target = removeString(*target, itemID)
			project.Touch()
			changed++
		}
	}

	if changed == 0 {
		return projects, nil
	}

	if err := s.store.SaveProjects(projects); err != nil {
		s.logger.Printf("ERROR: failed to persist projects after removing item %s: %v", itemID, err)
		return nil, fmt.Errorf("failed to save projects: %w", err)
	}

	s.logger.Printf("Removed item %s from %d project(s)", itemID, changed)
	return projects, nil
}

// targetList selects the project reference list for a linkable category.
// The switch is exhaustive: callers gate on Category.Linkable first.
func targetList(p *schema.Project, category schema.Category) *[]string {
	switch category {
	case schema.CategoryHook:
		return &p.HookUsedIDs
	default:
		return &p.YarnUsedIDs
	}
}

// diff returns the IDs present in a but not in b, as a set.
func diff(a, b []string) map[string]bool {
	out := make(map[string]bool)
	for _, id := range a {
		out[id] = true
	}
	for _, id := range b {
		delete(out, id)
	}
	return out
}

// union merges two ID sets.
func union(a, b map[string]bool) map[string]bool {
	for id := range b {
		a[id] = true
	}
	return a
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// removeString returns ids without id, preserving order.
func removeString(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
