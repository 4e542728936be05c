package schema

// Status is the lifecycle state of a project.
//
// This is the single canonical enumeration used everywhere in skein: the
// local store, the remote mapper, and the CLI all speak these values.
type Status string

const (
	StatusNotStarted   Status = "not_started"
	StatusInProgress   Status = "in_progress"
	StatusOnHold       Status = "on_hold"
	StatusCompleted    Status = "completed"
	StatusFrogged      Status = "frogged"
	StatusIdea         Status = "idea"
	StatusMaybeSomeday Status = "maybe_someday"
)

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusOnHold,
		StatusCompleted, StatusFrogged, StatusIdea, StatusMaybeSomeday:
		return true
	}
	return false
}

// Category classifies an inventory item. The set is closed: "other" items
// never participate in project material links.
type Category string

const (
	CategoryYarn  Category = "yarn"
	CategoryHook  Category = "hook"
	CategoryOther Category = "other"
)

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryYarn, CategoryHook, CategoryOther:
		return true
	}
	return false
}

// Linkable reports whether items of this category may be referenced by
// projects. Only yarn and hooks link; "other" items are storage-only.
func (c Category) Linkable() bool {
	return c == CategoryYarn || c == CategoryHook
}
