package syncer

import "skein/internal/schema"

// MergeProjects overlays pulled rows onto the local collection,
// last-write-wins by UpdatedAt. A pulled row replaces its local counterpart
// only when strictly newer; pulled rows carrying a deletion timestamp remove
// the local record entirely (soft delete remotely, hard delete locally).
// Unknown pulled rows are appended.
func MergeProjects(local, pulled []*schema.Project) []*schema.Project {
	if len(pulled) == 0 {
		return local
	}

	byID := make(map[string]*schema.Project, len(pulled))
	for _, p := range pulled {
		byID[p.ID] = p
	}

	merged := make([]*schema.Project, 0, len(local)+len(pulled))
	for _, p := range local {
		remote, ok := byID[p.ID]
		if !ok {
			merged = append(merged, p)
			continue
		}
		delete(byID, p.ID)
		if !remote.UpdatedAt.After(p.UpdatedAt) {
			merged = append(merged, p)
			continue
		}
		if remote.DeletedAt != nil {
			continue
		}
		merged = append(merged, remote)
	}

	// Rows that only exist remotely, in pull order.
	for _, p := range pulled {
		if remote, ok := byID[p.ID]; ok && remote.DeletedAt == nil {
			merged = append(merged, remote)
		}
	}

	return merged
}

// MergeInventory is the inventory counterpart of MergeProjects, keyed on
// LastUpdated.
func MergeInventory(local, pulled []*schema.InventoryItem) []*schema.InventoryItem {
	if len(pulled) == 0 {
		return local
	}

	byID := make(map[string]*schema.InventoryItem, len(pulled))
	for _, i := range pulled {
		byID[i.ID] = i
	}

	merged := make([]*schema.InventoryItem, 0, len(local)+len(pulled))
	for _, i := range local {
		remote, ok := byID[i.ID]
		if !ok {
			merged = append(merged, i)
			continue
		}
		delete(byID, i.ID)
		if !remote.LastUpdated.After(i.LastUpdated) {
			merged = append(merged, i)
			continue
		}
		if remote.DeletedAt != nil {
			continue
		}
		merged = append(merged, remote)
	}

	for _, i := range pulled {
		if remote, ok := byID[i.ID]; ok && remote.DeletedAt == nil {
			merged = append(merged, remote)
		}
	}

	return merged
}
