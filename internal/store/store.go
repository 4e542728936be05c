// Package store persists skein's two collections as JSON array files.
//
// Each collection lives under a fixed key in the data directory:
// projects.json and inventory.json. Every operation is whole-collection: a
// load reads and parses the entire array, a save rewrites it atomically via
// a temp file and rename.
//
// Read failures (missing file, unreadable, corrupt JSON) degrade to an empty
// collection and are logged, never returned: a broken local cache must not
// block the user's primary edit. Write failures are returned to the caller.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"skein/internal/schema"
)

// Storage keys. Each maps to <key>.json under the data directory.
const (
	KeyProjects  = "projects"
	KeyInventory = "inventory"
)

// Store reads and writes the projects and inventory collections.
type Store struct {
	dir    string
	logger *log.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
//
// If logger is nil, a default logger writing to stderr is used.
func New(dir string, logger *log.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing the given storage key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// LoadProjects reads the projects collection.
//
// A missing or unreadable file yields an empty slice, never an error.
func (s *Store) LoadProjects() []*schema.Project {
	var projects []*schema.Project
	if !s.load(KeyProjects, &projects) {
		return []*schema.Project{}
	}
	if projects == nil {
		projects = []*schema.Project{}
	}
	return projects
}

// SaveProjects writes the projects collection atomically.
func (s *Store) SaveProjects(projects []*schema.Project) error {
	return s.save(KeyProjects, projects)
}

// LoadInventory reads the inventory collection.
//
// A missing or unreadable file yields an empty slice, never an error.
func (s *Store) LoadInventory() []*schema.InventoryItem {
	var items []*schema.InventoryItem
	if !s.load(KeyInventory, &items) {
		return []*schema.InventoryItem{}
	}
	if items == nil {
		items = []*schema.InventoryItem{}
	}
	return items
}

// SaveInventory writes the inventory collection atomically.
func (s *Store) SaveInventory(items []*schema.InventoryItem) error {
	return s.save(KeyInventory, items)
}

// load reads and parses the file for key into v. Returns false when the
// collection should be treated as empty.
func (s *Store) load(key string, v interface{}) bool {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("WARNING: failed to read %s collection: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Printf("WARNING: failed to parse %s collection, treating as empty: %v", key, err)
		return false
	}
	return true
}

// save marshals v and writes it atomically via temp file + rename.
func (s *Store) save(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s collection: %w", key, err)
	}

	path := s.Path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s collection: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s collection: %w", key, err)
	}
	return nil
}
