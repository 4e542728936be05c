package syncer

import (
	"time"

	"skein/internal/schema"
)

// Table names in the remote store.
const (
	TableProjects  = "projects"
	TableInventory = "inventory_items"
)

// projectRow is the remote row shape for the projects table. Optional
// scalar columns are nullable pointers; list columns are always present so
// an upsert replaces the whole row.
type projectRow struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	ProjectType *string `json:"project_type"`

	Images   []string `json:"images"`
	Patterns []string `json:"patterns"`
	Notes    string   `json:"notes"`

	YarnUsedIDs []string `json:"yarn_used_ids"`
	HookUsedIDs []string `json:"hook_used_ids"`

	Progress     []progressRow    `json:"progress"`
	Inspirations []inspirationRow `json:"inspirations"`

	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	StartedAt   *string `json:"started_at"`
	CompletedAt *string `json:"completed_at"`
	DeletedAt   *string `json:"deleted_at"`
}

type progressRow struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

type inspirationRow struct {
	Source string `json:"source"`
	URI    string `json:"uri"`
}

// itemRow is the remote row shape for the inventory_items table.
type itemRow struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`

	Images []string `json:"images"`

	YarnDetails  *yarnDetailsRow  `json:"yarn_details"`
	HookDetails  *hookDetailsRow  `json:"hook_details"`
	OtherDetails *otherDetailsRow `json:"other_details"`

	Location string   `json:"location"`
	Tags     []string `json:"tags"`
	Notes    string   `json:"notes"`
	Barcode  string   `json:"barcode"`

	UsedInProjects []string `json:"used_in_projects"`

	DateAdded   string  `json:"date_added"`
	LastUpdated string  `json:"last_updated"`
	DeletedAt   *string `json:"deleted_at"`
}

type yarnDetailsRow struct {
	Brand         string `json:"brand"`
	Colorway      string `json:"colorway"`
	WeightClass   string `json:"weight_class"`
	FiberContent  string `json:"fiber_content"`
	YardsPerSkein int    `json:"yards_per_skein"`
}

type hookDetailsRow struct {
	Size     string `json:"size"`
	Material string `json:"material"`
	Length   string `json:"length"`
}

type otherDetailsRow struct {
	Kind string `json:"kind"`
}

// statusToRemote maps the canonical status enumeration to the remote enum's
// hyphenated values. The table is total over schema's constants; anything
// outside it falls back to idea with a logged warning.
var statusToRemote = map[schema.Status]string{
	schema.StatusNotStarted:   "not-started",
	schema.StatusInProgress:   "in-progress",
	schema.StatusOnHold:       "on-hold",
	schema.StatusCompleted:    "completed",
	schema.StatusFrogged:      "frogged",
	schema.StatusIdea:         "idea",
	schema.StatusMaybeSomeday: "maybe-someday",
}

var statusFromRemote = func() map[string]schema.Status {
	m := make(map[string]schema.Status, len(statusToRemote))
	for local, remote := range statusToRemote {
		m[remote] = local
	}
	return m
}()

// timeToString serializes a timestamp for the wire.
func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timePtrToString serializes an optional timestamp, nil staying NULL.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeToString(*t)
	return &s
}

// parseTime parses a wire timestamp. Malformed input yields the zero time;
// the remote store owns these columns, so a parse failure means a schema
// problem upstream rather than user data loss.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseTimePtr parses an optional wire timestamp.
func parseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseTime(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// nonNil returns ids, or an empty slice when ids is nil. Wire list columns
// are always arrays, never null.
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// optional converts an empty string to NULL for nullable scalar columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
