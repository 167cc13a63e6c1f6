package sitemap

import (
	"context"
	"errors"
	"strings"

	"github.com/lysyi3m/sitemap-xml/app/database"
	"github.com/lysyi3m/sitemap-xml/app/security"
)

// mockRepository is an in-memory content tree.
type mockRepository struct {
	items     map[string]*database.Item // by id
	children  map[string][]string
	links     map[string][]string
	failPaths map[string]bool

	descendantCalls   map[string]int
	anonymousEnumOnly bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		items:             make(map[string]*database.Item),
		children:          make(map[string][]string),
		links:             make(map[string][]string),
		failPaths:         make(map[string]bool),
		descendantCalls:   make(map[string]int),
		anonymousEnumOnly: true,
	}
}

func (m *mockRepository) add(id, path, templateID string, fields map[string]string) *database.Item {
	item := &database.Item{
		ID:         id,
		Name:       path[strings.LastIndex(path, "/")+1:],
		Path:       path,
		TemplateID: templateID,
		Fields:     fields,
	}
	if parent := m.byPath(path[:strings.LastIndex(path, "/")]); parent != nil {
		item.ParentID = parent.ID
		m.children[parent.ID] = append(m.children[parent.ID], id)
	}
	m.items[id] = item
	return item
}

func (m *mockRepository) link(sourceID string, targetIDs ...string) {
	m.links[sourceID] = append(m.links[sourceID], targetIDs...)
}

func (m *mockRepository) byPath(path string) *database.Item {
	for _, item := range m.items {
		if strings.EqualFold(item.Path, path) {
			return item
		}
	}
	return nil
}

func (m *mockRepository) GetItemByPath(ctx context.Context, path string) (*database.Item, error) {
	if m.failPaths[path] {
		return nil, errors.New("repository unavailable")
	}
	item := m.byPath(path)
	if item == nil {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (m *mockRepository) GetItemByID(ctx context.Context, id string) (*database.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (m *mockRepository) GetDescendants(ctx context.Context, item *database.Item) ([]database.Item, error) {
	if m.anonymousEnumOnly && !security.UserFromContext(ctx).IsAnonymous {
		return nil, errors.New("descendants must be enumerated as anonymous")
	}
	m.descendantCalls[item.ID]++

	var result []database.Item
	var walk func(id string)
	walk = func(id string) {
		for _, childID := range m.children[id] {
			result = append(result, *m.items[childID])
			walk(childID)
		}
	}
	walk(item.ID)
	return result, nil
}

func (m *mockRepository) GetReferences(ctx context.Context, item *database.Item) ([]database.Reference, error) {
	var refs []database.Reference
	for i, targetID := range m.links[item.ID] {
		ref := database.Reference{SourceID: item.ID, TargetID: targetID, Position: i}
		if target, ok := m.items[targetID]; ok {
			copied := *target
			ref.Target = &copied
			ref.TargetPath = target.Path
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (m *mockRepository) GetSites(ctx context.Context) ([]database.Site, error) {
	return nil, nil
}

var _ database.ContentRepository = (*mockRepository)(nil)
