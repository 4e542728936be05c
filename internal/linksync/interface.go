// Package linksync keeps project material references and inventory
// back-references consistent.
//
// Projects point at inventory items through YarnUsedIDs and HookUsedIDs;
// items point back through UsedInProjects. Neither collection is edited
// through the other, so every edit to one side must be propagated to the
// other. This package owns that propagation and is the only code that
// writes both collections.
//
// The invariant maintained: for every project P and item I,
// I.ID is in P.YarnUsedIDs or P.HookUsedIDs exactly when P.ID is in
// I.UsedInProjects. Items of category "other" are exempt: they never link
// and are never written here.
package linksync

import "skein/internal/schema"

// Store is the persistence surface linksync needs. *store.Store satisfies
// it; tests inject fakes to observe write behavior.
type Store interface {
	LoadProjects() []*schema.Project
	SaveProjects([]*schema.Project) error
	LoadInventory() []*schema.InventoryItem
	SaveInventory([]*schema.InventoryItem) error
}

// Service propagates reference changes between the two collections.
//
// Every mutating call performs a full read-modify-write of the affected
// collection. The collection is persisted only when at least one record
// actually changed; unchanged records are passed through untouched.
type Service interface {
	// SyncProjectMaterials applies a project's material-list edit to the
	// inventory collection. The new and old ID lists are diffed per kind;
	// items newly referenced gain projectID in UsedInProjects, items no
	// longer referenced lose it. Returns the resulting inventory
	// collection. When the diff is empty this is a no-op with zero
	// storage writes.
	SyncProjectMaterials(projectID string, newYarnIDs, newHookIDs, oldYarnIDs, oldHookIDs []string) ([]*schema.InventoryItem, error)

	// RemoveProjectFromInventory strips projectID from every item's
	// UsedInProjects, for use when a project is deleted. Idempotent: a
	// second call finds nothing to change and performs no write.
	RemoveProjectFromInventory(projectID string) ([]*schema.InventoryItem, error)

	// SyncInventoryToProjects applies an item's project-list edit to the
	// projects collection. The target field is selected by category
	// (yarn -> YarnUsedIDs, hook -> HookUsedIDs); category "other" is a
	// no-op regardless of the supplied lists. Affected projects get their
	// UpdatedAt bumped.
	SyncInventoryToProjects(itemID string, category schema.Category, newProjectIDs, oldProjectIDs []string) ([]*schema.Project, error)

	// RemoveInventoryFromProjects strips itemID from the category's
	// reference list on every project, for use when an item is deleted.
	// Same category gate as SyncInventoryToProjects.
	RemoveInventoryFromProjects(itemID string, category schema.Category) ([]*schema.Project, error)
}
