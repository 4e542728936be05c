package linksync

import (
	"log"
	"os"
	"testing"
	"time"

	"skein/internal/schema"
)

// fakeStore is an in-memory Store that counts writes.
type fakeStore struct {
	projects []*schema.Project
	items    []*schema.InventoryItem

	projectSaves   int
	inventorySaves int
}

func (f *fakeStore) LoadProjects() []*schema.Project { return f.projects }
func (f *fakeStore) SaveProjects(p []*schema.Project) error {
	f.projects = p
	f.projectSaves++
	return nil
}
func (f *fakeStore) LoadInventory() []*schema.InventoryItem { return f.items }
func (f *fakeStore) SaveInventory(i []*schema.InventoryItem) error {
	f.items = i
	f.inventorySaves++
	return nil
}

func testService(f *fakeStore) Service {
	return New(f, log.New(os.Stderr, "[test] ", 0))
}

func testItem(id string, category schema.Category, usedIn ...string) *schema.InventoryItem {
	now := time.Now()
	return &schema.InventoryItem{
		ID:             id,
		Category:       category,
		Name:           "Item " + id,
		UsedInProjects: usedIn,
		DateAdded:      now,
		LastUpdated:    now,
	}
}

func testProject(id string, yarnIDs, hookIDs []string) *schema.Project {
	now := time.Now()
	return &schema.Project{
		ID:          id,
		Title:       "Project " + id,
		Status:      schema.StatusInProgress,
		YarnUsedIDs: yarnIDs,
		HookUsedIDs: hookIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// checkSymmetry verifies the referential symmetry invariant over full
// collections: an item back-references a project exactly when the project
// references the item.
func checkSymmetry(t *testing.T, projects []*schema.Project, items []*schema.InventoryItem) {
	t.Helper()
	for _, p := range projects {
		for _, i := range items {
			forward := p.References(i.ID)
			backward := i.UsedIn(p.ID)
			if forward != backward {
				t.Errorf("symmetry broken for project %s / item %s: forward=%v backward=%v",
					p.ID, i.ID, forward, backward)
			}
		}
	}
}

func TestSyncProjectMaterialsAddsBackReference(t *testing.T) {
	// Item and project inconsistent at rest: project references the item,
	// item has no back-reference.
	f := &fakeStore{
		projects: []*schema.Project{testProject("p1", []string{"i1"}, nil)},
		items:    []*schema.InventoryItem{testItem("i1", schema.CategoryYarn)},
	}
	svc := testService(f)

	items, err := svc.SyncProjectMaterials("p1", []string{"i1"}, nil, nil, nil)
	if err != nil {
		t.Fatalf("SyncProjectMaterials failed: %v", err)
	}

	if len(items[0].UsedInProjects) != 1 || items[0].UsedInProjects[0] != "p1" {
		t.Errorf("expected UsedInProjects=[p1], got %v", items[0].UsedInProjects)
	}
	if f.inventorySaves != 1 {
		t.Errorf("expected 1 inventory save, got %d", f.inventorySaves)
	}
	checkSymmetry(t, f.projects, f.items)
}

func TestSyncProjectMaterialsRemovesBackReference(t *testing.T) {
	f := &fakeStore{
		items: []*schema.InventoryItem{
			testItem("i1", schema.CategoryYarn, "p1"),
			testItem("i2", schema.CategoryHook, "p1"),
		},
	}
	svc := testService(f)

	// p1 drops the yarn but keeps the hook.
	items, err := svc.SyncProjectMaterials("p1", nil, []string{"i2"}, []string{"i1"}, []string{"i2"})
	if err != nil {
		t.Fatalf("SyncProjectMaterials failed: %v", err)
	}

	if len(items[0].UsedInProjects) != 0 {
		t.Errorf("i1 should no longer reference p1, got %v", items[0].UsedInProjects)
	}
	if !items[1].UsedIn("p1") {
		t.Errorf("i2 should still reference p1")
	}
}

func TestSyncProjectMaterialsNoChangeWritesNothing(t *testing.T) {
	f := &fakeStore{
		items: []*schema.InventoryItem{testItem("i1", schema.CategoryYarn)},
	}
	svc := testService(f)

	if _, err := svc.SyncProjectMaterials("p1", nil, nil, nil, nil); err != nil {
		t.Fatalf("SyncProjectMaterials failed: %v", err)
	}
	if f.inventorySaves != 0 {
		t.Errorf("empty diff must not write, got %d saves", f.inventorySaves)
	}

	// Same lists on both sides is also an empty diff.
	if _, err := svc.SyncProjectMaterials("p1", []string{"i1"}, nil, []string{"i1"}, nil); err != nil {
		t.Fatalf("SyncProjectMaterials failed: %v", err)
	}
	if f.inventorySaves != 0 {
		t.Errorf("identical lists must not write, got %d saves", f.inventorySaves)
	}
}

func TestSyncProjectMaterialsSkipsOtherItems(t *testing.T) {
	f := &fakeStore{
		items: []*schema.InventoryItem{testItem("i1", schema.CategoryOther)},
	}
	svc := testService(f)

	items, err := svc.SyncProjectMaterials("p1", []string{"i1"}, nil, nil, nil)
	if err != nil {
		t.Fatalf("SyncProjectMaterials failed: %v", err)
	}

	if len(items[0].UsedInProjects) != 0 {
		t.Errorf("other items must never gain project links, got %v", items[0].UsedInProjects)
	}
	if f.inventorySaves != 0 {
		t.Errorf("nothing changed, expected 0 saves, got %d", f.inventorySaves)
	}
}

func TestRemoveProjectFromInventoryIsIdempotent(t *testing.T) {
	f := &fakeStore{
		items: []*schema.InventoryItem{
			testItem("i1", schema.CategoryYarn, "p1", "p2"),
			testItem("i2", schema.CategoryHook, "p1"),
		},
	}
	svc := testService(f)

	items, err := svc.RemoveProjectFromInventory("p1")
	if err != nil {
		t.Fatalf("RemoveProjectFromInventory failed: %v", err)
	}
	if items[0].UsedIn("p1") || items[1].UsedIn("p1") {
		t.Errorf("p1 should be stripped from all items")
	}
	if !items[0].UsedIn("p2") {
		t.Errorf("p2 reference should survive")
	}
	if f.inventorySaves != 1 {
		t.Errorf("expected 1 save, got %d", f.inventorySaves)
	}

	// Second call finds nothing to change.
	if _, err := svc.RemoveProjectFromInventory("p1"); err != nil {
		t.Fatalf("second RemoveProjectFromInventory failed: %v", err)
	}
	if f.inventorySaves != 1 {
		t.Errorf("second removal must not write, got %d saves", f.inventorySaves)
	}
}

func TestSyncInventoryToProjectsYarn(t *testing.T) {
	f := &fakeStore{
		projects: []*schema.Project{
			testProject("p1", nil, nil),
			testProject("p2", []string{"i1"}, nil),
		},
	}
	svc := testService(f)

	before := f.projects[0].UpdatedAt
	time.Sleep(time.Millisecond)

	// Item i1 is now used in p1 and no longer in p2.
	projects, err := svc.SyncInventoryToProjects("i1", schema.CategoryYarn,
		[]string{"p1"}, []string{"p2"})
	if err != nil {
		t.Fatalf("SyncInventoryToProjects failed: %v", err)
	}

	if !projects[0].References("i1") {
		t.Errorf("p1 should reference i1")
	}
	if projects[1].References("i1") {
		t.Errorf("p2 should no longer reference i1")
	}
	if !projects[0].UpdatedAt.After(before) {
		t.Errorf("affected project's UpdatedAt should be bumped")
	}
	if f.projectSaves != 1 {
		t.Errorf("expected 1 save, got %d", f.projectSaves)
	}
}

func TestSyncInventoryToProjectsHookTargetsHookList(t *testing.T) {
	f := &fakeStore{
		projects: []*schema.Project{testProject("p1", nil, nil)},
	}
	svc := testService(f)

	projects, err := svc.SyncInventoryToProjects("h1", schema.CategoryHook,
		[]string{"p1"}, nil)
	if err != nil {
		t.Fatalf("SyncInventoryToProjects failed: %v", err)
	}

	if len(projects[0].HookUsedIDs) != 1 || projects[0].HookUsedIDs[0] != "h1" {
		t.Errorf("expected HookUsedIDs=[h1], got %v", projects[0].HookUsedIDs)
	}
	if len(projects[0].YarnUsedIDs) != 0 {
		t.Errorf("yarn list should be untouched, got %v", projects[0].YarnUsedIDs)
	}
}

func TestSyncInventoryToProjectsOtherIsNoOp(t *testing.T) {
	f := &fakeStore{
		projects: []*schema.Project{testProject("p1", nil, nil)},
	}
	svc := testService(f)

	projects, err := svc.SyncInventoryToProjects("i1", schema.CategoryOther,
		[]string{"p1"}, nil)
	if err != nil {
		t.Fatalf("SyncInventoryToProjects failed: %v", err)
	}

	if len(projects[0].YarnUsedIDs) != 0 || len(projects[0].HookUsedIDs) != 0 {
		t.Errorf("other category must never mutate projects")
	}
	if f.projectSaves != 0 {
		t.Errorf("other category must not write, got %d saves", f.projectSaves)
	}
}

func TestRemoveInventoryFromProjects(t *testing.T) {
	f := &fakeStore{
		projects: []*schema.Project{
			testProject("p1", []string{"i1", "i2"}, nil),
			testProject("p2", []string{"i1"}, nil),
			testProject("p3", nil, nil),
		},
	}
	svc := testService(f)

	projects, err := svc.RemoveInventoryFromProjects("i1", schema.CategoryYarn)
	if err != nil {
		t.Fatalf("RemoveInventoryFromProjects failed: %v", err)
	}

	if projects[0].References("i1") || projects[1].References("i1") {
		t.Errorf("i1 should be stripped from all projects")
	}
	if !projects[0].References("i2") {
		t.Errorf("i2 reference should survive")
	}
	if f.projectSaves != 1 {
		t.Errorf("expected 1 save, got %d", f.projectSaves)
	}
}

func TestUnaffectedRecordsKeepIdentity(t *testing.T) {
	untouched := testItem("i2", schema.CategoryYarn)
	f := &fakeStore{
		items: []*schema.InventoryItem{testItem("i1", schema.CategoryYarn), untouched},
	}
	svc := testService(f)

	items, err := svc.SyncProjectMaterials("p1", []string{"i1"}, nil, nil, nil)
	if err != nil {
		t.Fatalf("SyncProjectMaterials failed: %v", err)
	}

	if items[1] != untouched {
		t.Errorf("unaffected item should be the same record, not a rewrite")
	}
}
