package sitemap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/sitemap-xml/app/database"
	"github.com/lysyi3m/sitemap-xml/app/security"
	"github.com/lysyi3m/sitemap-xml/app/sites"
)

// Selector produces the sitemap-eligible items below a site root.
type Selector struct {
	repo             database.ContentRepository
	enabledTemplates map[string]bool
	excludeItems     map[string]bool
	query            *ExcludeQuery
}

func NewSelector(repo database.ContentRepository, settings sites.Settings, query *ExcludeQuery) *Selector {
	return &Selector{
		repo:             repo,
		enabledTemplates: idSet(settings.EnabledTemplates),
		excludeItems:     idSet(settings.ExcludeItems),
		query:            query,
	}
}

// Run returns the root item followed by its descendants, then the same for
// extraPath when set, filtered down to the items that belong in a sitemap.
// A missing root yields an empty result.
func (s *Selector) Run(ctx context.Context, rootPath, extraPath string) ([]database.Item, error) {
	items, err := s.fetch(ctx, rootPath)
	if err != nil {
		return nil, err
	}

	if extraPath != "" {
		extra, err := s.fetch(ctx, extraPath)
		if err != nil {
			return nil, err
		}
		items = append(items, extra...)
	}

	selected := make([]database.Item, 0, len(items))
	for _, item := range items {
		include, reason := s.applyFilters(&item)
		if !include {
			slog.Debug("Item excluded from sitemap", "path", item.Path, "reason", reason)
			continue
		}
		selected = append(selected, item)
	}

	return selected, nil
}

func (s *Selector) fetch(ctx context.Context, path string) ([]database.Item, error) {
	root, err := s.repo.GetItemByPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", path, err)
	}
	if root == nil {
		slog.Debug("Root item not found", "path", path)
		return nil, nil
	}

	var descendants []database.Item
	err = security.RunAs(ctx, security.Anonymous, func(ctx context.Context) error {
		var err error
		descendants, err = s.repo.GetDescendants(ctx, root)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get descendants of %s: %w", path, err)
	}

	items := make([]database.Item, 0, len(descendants)+1)
	items = append(items, *root)
	return append(items, descendants...), nil
}

func (s *Selector) applyFilters(item *database.Item) (bool, string) {
	if item.TemplateID == "" || !s.enabledTemplates[database.NormalizeID(item.TemplateID)] {
		return false, "template not enabled"
	}

	if s.excludeItems[database.NormalizeID(item.ID)] {
		return false, "excluded by id"
	}

	if s.query != nil {
		matched, err := s.query.Match(item)
		if err != nil {
			slog.Warn("Failed to evaluate exclusion query", "path", item.Path, "query", s.query.String(), "error", err)
		} else if matched {
			return false, "excluded by query"
		}
	}

	return true, ""
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[database.NormalizeID(id)] = true
	}
	return set
}
