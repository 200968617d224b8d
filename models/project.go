package models

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultViewText is the call-to-action label shown when a project has none.
const DefaultViewText = "VIEW PROJECT"

// MaxThumbnailBytes caps thumbnail uploads at 1 MiB.
const MaxThumbnailBytes = 1 << 20

// Project represents a portfolio entry shown on the site
type Project struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string    `json:"title" db:"title" gorm:"type:text;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text;not null"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail" gorm:"type:text;not null"`
	DemoLink    string    `json:"demoLink" db:"demo_link" gorm:"type:text;not null"`
	ViewText    string    `json:"viewText" db:"view_text" gorm:"type:text;not null;default:'VIEW PROJECT'"`
	Order       int       `json:"order" db:"display_order" gorm:"column:display_order;type:integer;not null;index:idx_project_display_order"`
}

// BeforeCreate assigns a fresh identifier so ids are never supplied by callers.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ViewText == "" {
		p.ViewText = DefaultViewText
	}
	return nil
}

// MissingField returns the name of the first required field that is empty,
// or "" when the project carries everything it needs.
func (p Project) MissingField() string {
	switch {
	case p.Title == "":
		return "title"
	case p.Description == "":
		return "description"
	case p.DemoLink == "":
		return "demoLink"
	case p.Thumbnail == "":
		return "thumbnail"
	}
	return ""
}

// ProjectFields is a partial update. Only non-nil fields are merged.
type ProjectFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	DemoLink    *string `json:"demoLink,omitempty"`
	ViewText    *string `json:"viewText,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (f ProjectFields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Thumbnail == nil &&
		f.DemoLink == nil && f.ViewText == nil && f.Order == nil
}

// Columns maps the set fields to their database columns.
func (f ProjectFields) Columns() map[string]any {
	cols := make(map[string]any)
	if f.Title != nil {
		cols["title"] = *f.Title
	}
	if f.Description != nil {
		cols["description"] = *f.Description
	}
	if f.Thumbnail != nil {
		cols["thumbnail"] = *f.Thumbnail
	}
	if f.DemoLink != nil {
		cols["demo_link"] = *f.DemoLink
	}
	if f.ViewText != nil {
		cols["view_text"] = *f.ViewText
	}
	if f.Order != nil {
		cols["display_order"] = *f.Order
	}
	return cols
}

// Apply merges the set fields into p.
func (f ProjectFields) Apply(p *Project) {
	if f.Title != nil {
		p.Title = *f.Title
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Thumbnail != nil {
		p.Thumbnail = *f.Thumbnail
	}
	if f.DemoLink != nil {
		p.DemoLink = *f.DemoLink
	}
	if f.ViewText != nil {
		p.ViewText = *f.ViewText
	}
	if f.Order != nil {
		p.Order = *f.Order
	}
}

// OrderOnly builds an update that touches nothing but the order field.
func OrderOnly(order int) ProjectFields {
	return ProjectFields{Order: &order}
}

// NextOrder returns the order for a project appended to the list:
// one past the current maximum, or 1 for an empty list.
func NextOrder(projects []Project) int {
	if len(projects) == 0 {
		return 1
	}
	highest := projects[0].Order
	for _, p := range projects[1:] {
		if p.Order > highest {
			highest = p.Order
		}
	}
	return highest + 1
}

// SortByOrder sorts projects ascending by order in place.
func SortByOrder(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Order < projects[j].Order
	})
}
