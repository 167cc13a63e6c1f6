package database

import (
	"strings"
	"time"
)

type Item struct {
	ID            string
	ParentID      string
	Name          string
	Path          string
	TemplateID    string
	TemplateName  string
	UpdatedAt     time.Time
	SortOrder     int
	AnonymousRead bool
	Fields        map[string]string
}

// Field returns the value of the named field, "" when the item has no such field.
func (i *Item) Field(name string) string {
	if i.Fields == nil {
		return ""
	}
	return i.Fields[name]
}

// Reference is one outbound link of an item as recorded in the link index.
type Reference struct {
	SourceID   string
	TargetID   string
	TargetPath string
	Position   int
	Target     *Item // nil when the target no longer exists or is not readable
}

// GetTargetItem returns the referenced item.
func (r Reference) GetTargetItem() *Item {
	return r.Target
}

// Site is a host site definition.
type Site struct {
	Name      string
	StartPath string
	Hostname  string
	Language  string
}

// NormalizeID makes item ids comparable: braces dropped, lower case.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "{")
	id = strings.TrimSuffix(id, "}")
	return strings.ToLower(id)
}
