// Package schema defines the JSON record shapes for skein's two collections.
package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Image is a reference to a stored picture. Local records keep the nested
// object shape; the remote store flattens images to bare URI strings.
type Image struct {
	URI string `json:"uri"`
}

// ProgressEntry records a dated note on how far a project has gotten.
type ProgressEntry struct {
	Date time.Time `json:"date"`
	Note string    `json:"note"`
}

// Inspiration points at where a project idea came from.
type Inspiration struct {
	Source string `json:"source"`
	URI    string `json:"uri,omitempty"`
}

// Project is a single craft project. Fields are flat and last-write-wins
// friendly: UpdatedAt is bumped on every mutation and resolves conflicts
// during sync.
type Project struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	ProjectType string `json:"projectType,omitempty"`

	Images   []Image  `json:"images,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
	Notes    string   `json:"notes,omitempty"`

	// Material references into the inventory collection. The linksync
	// service keeps these symmetric with InventoryItem.UsedInProjects.
	YarnUsedIDs []string `json:"yarnUsedIds,omitempty"`
	HookUsedIDs []string `json:"hookUsedIds,omitempty"`

	Progress     []ProgressEntry `json:"progress,omitempty"`
	Inspirations []Inspiration   `json:"inspirations,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// NewProject creates a project with a generated ID and initialized
// timestamps. Status defaults to idea.
func NewProject(title string) *Project {
	now := time.Now()
	return &Project{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    StatusIdea,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks that the project has valid field values.
func (p *Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("createdAt is required")
	}
	if p.UpdatedAt.IsZero() {
		return fmt.Errorf("updatedAt is required")
	}
	return nil
}

// Touch bumps UpdatedAt to now. Call after any field mutation.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now()
}

// MaterialIDs returns the union of yarn and hook references.
func (p *Project) MaterialIDs() []string {
	ids := make([]string, 0, len(p.YarnUsedIDs)+len(p.HookUsedIDs))
	ids = append(ids, p.YarnUsedIDs...)
	ids = append(ids, p.HookUsedIDs...)
	return ids
}

// References reports whether the project links the given inventory item.
func (p *Project) References(itemID string) bool {
	for _, id := range p.YarnUsedIDs {
		if id == itemID {
			return true
		}
	}
	for _, id := range p.HookUsedIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
