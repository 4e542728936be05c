package store

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"skein/internal/schema"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestLoadMissingCollections(t *testing.T) {
	s := setupStore(t)

	projects := s.LoadProjects()
	if projects == nil || len(projects) != 0 {
		t.Errorf("expected empty non-nil projects, got %v", projects)
	}

	items := s.LoadInventory()
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil inventory, got %v", items)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := setupStore(t)

	p := schema.NewProject("Temperature blanket")
	p.YarnUsedIDs = []string{"y1"}
	if err := s.SaveProjects([]*schema.Project{p}); err != nil {
		t.Fatalf("SaveProjects failed: %v", err)
	}

	loaded := s.LoadProjects()
	if len(loaded) != 1 {
		t.Fatalf("expected 1 project, got %d", len(loaded))
	}
	if loaded[0].ID != p.ID || loaded[0].Title != p.Title {
		t.Errorf("loaded project doesn't match: %+v", loaded[0])
	}
	if !loaded[0].UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("UpdatedAt not preserved: %v != %v", loaded[0].UpdatedAt, p.UpdatedAt)
	}

	item := schema.NewInventoryItem("Clover hook", schema.CategoryHook)
	item.Hook = &schema.HookDetails{Size: "3.5mm", Material: "aluminum"}
	if err := s.SaveInventory([]*schema.InventoryItem{item}); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}

	loadedItems := s.LoadInventory()
	if len(loadedItems) != 1 {
		t.Fatalf("expected 1 item, got %d", len(loadedItems))
	}
	if loadedItems[0].Hook == nil || loadedItems[0].Hook.Size != "3.5mm" {
		t.Errorf("hook details not preserved: %+v", loadedItems[0])
	}
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	s := setupStore(t)

	if err := os.WriteFile(s.Path(KeyProjects), []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	projects := s.LoadProjects()
	if len(projects) != 0 {
		t.Errorf("corrupt file should load as empty, got %d projects", len(projects))
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := setupStore(t)

	if err := s.SaveProjects([]*schema.Project{schema.NewProject("Shawl")}); err != nil {
		t.Fatalf("SaveProjects failed: %v", err)
	}

	if _, err := os.Stat(s.Path(KeyProjects) + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind after save")
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "projects.json")); err != nil {
		t.Errorf("projects.json missing after save: %v", err)
	}
}
