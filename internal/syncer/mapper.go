package syncer

import (
	"skein/internal/schema"
)

// remoteStatus translates a local status to its remote enum value.
func (s *syncer) remoteStatus(st schema.Status) string {
	if v, ok := statusToRemote[st]; ok {
		return v
	}
	s.logger.Printf("WARNING: unrecognized project status %q, defaulting to idea", st)
	return "idea"
}

// localStatus translates a remote enum value back to the local status.
func (s *syncer) localStatus(v string) schema.Status {
	if st, ok := statusFromRemote[v]; ok {
		return st
	}
	s.logger.Printf("WARNING: unrecognized remote status %q, defaulting to idea", v)
	return schema.StatusIdea
}

// projectToRow maps a local project to the remote row shape: nested image
// objects flatten to URI strings, timestamps become ISO-8601 strings, and
// absent optionals become NULL or empty arrays.
func (s *syncer) projectToRow(p *schema.Project, userID string) projectRow {
	progress := make([]progressRow, 0, len(p.Progress))
	for _, entry := range p.Progress {
		progress = append(progress, progressRow{
			Date: timeToString(entry.Date),
			Note: entry.Note,
		})
	}
	inspirations := make([]inspirationRow, 0, len(p.Inspirations))
	for _, insp := range p.Inspirations {
		inspirations = append(inspirations, inspirationRow{
			Source: insp.Source,
			URI:    insp.URI,
		})
	}

	return projectRow{
		ID:           p.ID,
		UserID:       userID,
		Title:        p.Title,
		Description:  p.Description,
		Status:       s.remoteStatus(p.Status),
		ProjectType:  optional(p.ProjectType),
		Images:       imagesToURIs(p.Images),
		Patterns:     nonNil(p.Patterns),
		Notes:        p.Notes,
		YarnUsedIDs:  nonNil(p.YarnUsedIDs),
		HookUsedIDs:  nonNil(p.HookUsedIDs),
		Progress:     progress,
		Inspirations: inspirations,
		CreatedAt:    timeToString(p.CreatedAt),
		UpdatedAt:    timeToString(p.UpdatedAt),
		StartedAt:    timePtrToString(p.StartedAt),
		CompletedAt:  timePtrToString(p.CompletedAt),
		DeletedAt:    timePtrToString(p.DeletedAt),
	}
}

// projectFromRow maps a remote row back to the local shape.
func (s *syncer) projectFromRow(row projectRow) *schema.Project {
	var progress []schema.ProgressEntry
	for _, entry := range row.Progress {
		progress = append(progress, schema.ProgressEntry{
			Date: parseTime(entry.Date),
			Note: entry.Note,
		})
	}
	var inspirations []schema.Inspiration
	for _, insp := range row.Inspirations {
		inspirations = append(inspirations, schema.Inspiration{
			Source: insp.Source,
			URI:    insp.URI,
		})
	}

	return &schema.Project{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Status:       s.localStatus(row.Status),
		ProjectType:  fromOptional(row.ProjectType),
		Images:       urisToImages(row.Images),
		Patterns:     emptyToNil(row.Patterns),
		Notes:        row.Notes,
		YarnUsedIDs:  emptyToNil(row.YarnUsedIDs),
		HookUsedIDs:  emptyToNil(row.HookUsedIDs),
		Progress:     progress,
		Inspirations: inspirations,
		CreatedAt:    parseTime(row.CreatedAt),
		UpdatedAt:    parseTime(row.UpdatedAt),
		StartedAt:    parseTimePtr(row.StartedAt),
		CompletedAt:  parseTimePtr(row.CompletedAt),
		DeletedAt:    parseTimePtr(row.DeletedAt),
	}
}

// itemToRow maps a local inventory item to the remote row shape.
func (s *syncer) itemToRow(i *schema.InventoryItem, userID string) itemRow {
	row := itemRow{
		ID:             i.ID,
		UserID:         userID,
		Category:       string(i.Category),
		Name:           i.Name,
		Description:    i.Description,
		Quantity:       i.Quantity,
		Unit:           i.Unit,
		Images:         imagesToURIs(i.Images),
		Location:       i.Location,
		Tags:           nonNil(i.Tags),
		Notes:          i.Notes,
		Barcode:        i.Barcode,
		UsedInProjects: nonNil(i.UsedInProjects),
		DateAdded:      timeToString(i.DateAdded),
		LastUpdated:    timeToString(i.LastUpdated),
		DeletedAt:      timePtrToString(i.DeletedAt),
	}

	if i.Yarn != nil {
		row.YarnDetails = &yarnDetailsRow{
			Brand:         i.Yarn.Brand,
			Colorway:      i.Yarn.Colorway,
			WeightClass:   i.Yarn.WeightClass,
			FiberContent:  i.Yarn.FiberContent,
			YardsPerSkein: i.Yarn.YardsPerSkein,
		}
	}
	if i.Hook != nil {
		row.HookDetails = &hookDetailsRow{
			Size:     i.Hook.Size,
			Material: i.Hook.Material,
			Length:   i.Hook.Length,
		}
	}
	if i.Other != nil {
		row.OtherDetails = &otherDetailsRow{Kind: i.Other.Kind}
	}

	return row
}

// itemFromRow maps a remote row back to the local shape.
func (s *syncer) itemFromRow(row itemRow) *schema.InventoryItem {
	item := &schema.InventoryItem{
		ID:             row.ID,
		Category:       schema.Category(row.Category),
		Name:           row.Name,
		Description:    row.Description,
		Quantity:       row.Quantity,
		Unit:           row.Unit,
		Images:         urisToImages(row.Images),
		Location:       row.Location,
		Tags:           emptyToNil(row.Tags),
		Notes:          row.Notes,
		Barcode:        row.Barcode,
		UsedInProjects: emptyToNil(row.UsedInProjects),
		DateAdded:      parseTime(row.DateAdded),
		LastUpdated:    parseTime(row.LastUpdated),
		DeletedAt:      parseTimePtr(row.DeletedAt),
	}

	if row.YarnDetails != nil {
		item.Yarn = &schema.YarnDetails{
			Brand:         row.YarnDetails.Brand,
			Colorway:      row.YarnDetails.Colorway,
			WeightClass:   row.YarnDetails.WeightClass,
			FiberContent:  row.YarnDetails.FiberContent,
			YardsPerSkein: row.YarnDetails.YardsPerSkein,
		}
	}
	if row.HookDetails != nil {
		item.Hook = &schema.HookDetails{
			Size:     row.HookDetails.Size,
			Material: row.HookDetails.Material,
			Length:   row.HookDetails.Length,
		}
	}
	if row.OtherDetails != nil {
		item.Other = &schema.OtherDetails{Kind: row.OtherDetails.Kind}
	}

	return item
}

// imagesToURIs flattens nested image objects to bare URI strings.
func imagesToURIs(images []schema.Image) []string {
	uris := make([]string, 0, len(images))
	for _, img := range images {
		uris = append(uris, img.URI)
	}
	return uris
}

// urisToImages restores nested image objects from URI strings.
func urisToImages(uris []string) []schema.Image {
	if len(uris) == 0 {
		return nil
	}
	images := make([]schema.Image, 0, len(uris))
	for _, uri := range uris {
		images = append(images, schema.Image{URI: uri})
	}
	return images
}

// emptyToNil keeps local records free of empty-slice noise: the wire always
// carries arrays, local JSON omits empty lists.
func emptyToNil(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return ids
}
