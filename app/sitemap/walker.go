package sitemap

import (
	"context"
	"fmt"
	"strings"

	"github.com/lysyi3m/sitemap-xml/app/database"
	"github.com/lysyi3m/sitemap-xml/app/security"
	"github.com/lysyi3m/sitemap-xml/app/sites"
)

// MaxComponentDepth is the deepest component hop that may still contribute media.
const MaxComponentDepth = 2

type walkFrame struct {
	item   *database.Item
	depth  int
	refs   []database.Reference
	next   int
	loaded bool
}

// Walker discovers the media items referenced by a content item, directly or
// through component items. A Walker caches component folders per site and is
// meant to live for a single run.
type Walker struct {
	repo           database.ContentRepository
	componentIndex map[string]map[string]bool
}

func NewWalker(repo database.ContentRepository) *Walker {
	return &Walker{
		repo:           repo,
		componentIndex: make(map[string]map[string]bool),
	}
}

// Run returns the distinct media items reachable from item, in discovery order.
func (w *Walker) Run(ctx context.Context, item *database.Item, site sites.SiteConfig) ([]database.Item, error) {
	if site.MediaPath == "" || item == nil {
		return nil, nil
	}

	components, err := w.components(ctx, site)
	if err != nil {
		return nil, err
	}

	mediaPath := strings.ToLower(site.MediaPath)
	seen := make(map[string]bool)
	var media []database.Item

	stack := []walkFrame{{item: item}}
	for len(stack) > 0 {
		top := len(stack) - 1

		if !stack[top].loaded {
			if stack[top].depth > MaxComponentDepth {
				stack = stack[:top]
				continue
			}
			refs, err := w.repo.GetReferences(ctx, stack[top].item)
			if err != nil {
				return nil, fmt.Errorf("failed to get references of %s: %w", stack[top].item.Path, err)
			}
			stack[top].refs = refs
			stack[top].loaded = true
		}

		if stack[top].next >= len(stack[top].refs) {
			stack = stack[:top]
			continue
		}

		ref := stack[top].refs[stack[top].next]
		stack[top].next++

		target := ref.GetTargetItem()
		if target == nil {
			continue
		}

		switch {
		case strings.Contains(strings.ToLower(ref.TargetPath), mediaPath):
			if !seen[target.ID] {
				seen[target.ID] = true
				media = append(media, *target)
			}
		case components[database.NormalizeID(ref.TargetID)]:
			stack = append(stack, walkFrame{item: target, depth: stack[top].depth + 1})
		}
	}

	return media, nil
}

func (w *Walker) components(ctx context.Context, site sites.SiteConfig) (map[string]bool, error) {
	if index, ok := w.componentIndex[site.Name]; ok {
		return index, nil
	}

	index := make(map[string]bool)
	if site.ComponentsPath != "" {
		root, err := w.repo.GetItemByPath(ctx, site.ComponentsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get components folder %s: %w", site.ComponentsPath, err)
		}
		if root != nil {
			err = security.RunAs(ctx, security.Anonymous, func(ctx context.Context) error {
				descendants, err := w.repo.GetDescendants(ctx, root)
				if err != nil {
					return err
				}
				for _, component := range descendants {
					index[database.NormalizeID(component.ID)] = true
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get components below %s: %w", site.ComponentsPath, err)
			}
		}
	}

	w.componentIndex[site.Name] = index
	return index, nil
}
