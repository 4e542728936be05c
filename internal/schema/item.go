package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// YarnDetails holds yarn-specific attributes.
type YarnDetails struct {
	Brand         string `json:"brand,omitempty"`
	Colorway      string `json:"colorway,omitempty"`
	WeightClass   string `json:"weightClass,omitempty"`
	FiberContent  string `json:"fiberContent,omitempty"`
	YardsPerSkein int    `json:"yardsPerSkein,omitempty"`
}

// HookDetails holds crochet-hook-specific attributes.
type HookDetails struct {
	Size     string `json:"size,omitempty"`
	Material string `json:"material,omitempty"`
	Length   string `json:"length,omitempty"`
}

// OtherDetails holds attributes for miscellaneous supplies.
type OtherDetails struct {
	Kind string `json:"kind,omitempty"`
}

// InventoryItem is a material or tool in the user's stash. Exactly one of
// Yarn/Hook/Other is set, matching Category.
type InventoryItem struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit,omitempty"`

	Images []Image `json:"images,omitempty"`

	Yarn  *YarnDetails  `json:"yarnDetails,omitempty"`
	Hook  *HookDetails  `json:"hookDetails,omitempty"`
	Other *OtherDetails `json:"otherDetails,omitempty"`

	Location string   `json:"location,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	Barcode  string   `json:"barcode,omitempty"`

	// Back-references into the projects collection, kept symmetric with
	// Project.YarnUsedIDs/HookUsedIDs by the linksync service. Always
	// empty for category "other".
	UsedInProjects []string `json:"usedInProjects,omitempty"`

	DateAdded   time.Time  `json:"dateAdded"`
	LastUpdated time.Time  `json:"lastUpdated"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// NewInventoryItem creates an item with a generated ID and initialized
// timestamps.
func NewInventoryItem(name string, category Category) *InventoryItem {
	now := time.Now()
	return &InventoryItem{
		ID:          uuid.NewString(),
		Category:    category,
		Name:        name,
		DateAdded:   now,
		LastUpdated: now,
	}
}

// Validate checks that the item has valid field values, including the
// category/details exclusivity rule.
func (i *InventoryItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !i.Category.IsValid() {
		return fmt.Errorf("invalid category: %s", i.Category)
	}
	if i.Quantity < 0 {
		return fmt.Errorf("quantity must be non-negative (got %g)", i.Quantity)
	}
	switch i.Category {
	case CategoryYarn:
		if i.Hook != nil || i.Other != nil {
			return fmt.Errorf("yarn item cannot carry hook or other details")
		}
	case CategoryHook:
		if i.Yarn != nil || i.Other != nil {
			return fmt.Errorf("hook item cannot carry yarn or other details")
		}
	case CategoryOther:
		if i.Yarn != nil || i.Hook != nil {
			return fmt.Errorf("other item cannot carry yarn or hook details")
		}
		if len(i.UsedInProjects) > 0 {
			return fmt.Errorf("other items never link to projects")
		}
	}
	if i.DateAdded.IsZero() {
		return fmt.Errorf("dateAdded is required")
	}
	if i.LastUpdated.IsZero() {
		return fmt.Errorf("lastUpdated is required")
	}
	return nil
}

// Touch bumps LastUpdated to now. Call after any field mutation.
func (i *InventoryItem) Touch() {
	i.LastUpdated = time.Now()
}

// UsedIn reports whether the item records a link to the given project.
func (i *InventoryItem) UsedIn(projectID string) bool {
	for _, id := range i.UsedInProjects {
		if id == projectID {
			return true
		}
	}
	return false
}
