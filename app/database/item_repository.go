package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/sitemap-xml/app/security"
)

const itemColumns = `id, COALESCE(parent_id, ''), name, path, template_id, template_name,
	updated_at, sort_order, anonymous_read`

// ItemRepository reads the content tree, its fields and its link index.
type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetItemByPath returns nil when the item does not exist or the identity in ctx
// cannot read it.
func (r *ItemRepository) GetItemByPath(ctx context.Context, path string) (*Item, error) {
	path = normalizePath(path)
	if path == "" {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE path = ? COLLATE NOCASE
	`, path)

	return r.readableItem(ctx, row, "path")
}

func (r *ItemRepository) GetItemByID(ctx context.Context, id string) (*Item, error) {
	id = NormalizeID(id)
	if id == "" {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE id = ?
	`, id)

	return r.readableItem(ctx, row, "id")
}

// GetDescendants returns the whole subtree below item in depth-first pre-order,
// siblings ordered by sort order then name. For anonymous identities items that
// deny anonymous read are left out together with everything below them.
func (r *ItemRepository) GetDescendants(ctx context.Context, item *Item) ([]Item, error) {
	if item == nil {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM items WHERE parent_id = ?
			UNION ALL
			SELECT i.id FROM items i JOIN subtree s ON i.parent_id = s.id
		)
		SELECT `+itemColumns+`
		FROM items
		WHERE id IN (SELECT id FROM subtree)
	`, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get descendants: %w", err)
	}
	defer rows.Close()

	children := make(map[string][]Item)
	for rows.Next() {
		child, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		children[child.ParentID] = append(children[child.ParentID], *child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	for parentID := range children {
		siblings := children[parentID]
		sort.SliceStable(siblings, func(i, j int) bool {
			if siblings[i].SortOrder != siblings[j].SortOrder {
				return siblings[i].SortOrder < siblings[j].SortOrder
			}
			return strings.ToLower(siblings[i].Name) < strings.ToLower(siblings[j].Name)
		})
	}

	anonymous := security.UserFromContext(ctx).IsAnonymous
	descendants := make([]Item, 0)

	stack := reverseItems(children[item.ID])
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if anonymous && !current.AnonymousRead {
			continue
		}

		descendants = append(descendants, current)
		stack = append(stack, reverseItems(children[current.ID])...)
	}

	if err := r.loadFields(ctx, descendants); err != nil {
		return nil, err
	}

	return descendants, nil
}

// GetReferences returns the outbound links of item in stored order. Only one hop
// is followed.
func (r *ItemRepository) GetReferences(ctx context.Context, item *Item) ([]Reference, error) {
	if item == nil {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT source_id, target_id, target_path, position
		FROM item_links
		WHERE source_id = ?
		ORDER BY position
	`, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get references: %w", err)
	}

	var references []Reference
	for rows.Next() {
		var ref Reference
		if err := rows.Scan(&ref.SourceID, &ref.TargetID, &ref.TargetPath, &ref.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan link row: %w", err)
		}
		references = append(references, ref)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating link rows: %w", err)
	}
	rows.Close()

	for i := range references {
		target, err := r.GetItemByID(ctx, references[i].TargetID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve link target %s: %w", references[i].TargetID, err)
		}
		if target != nil {
			references[i].Target = target
			references[i].TargetPath = target.Path
		}
	}

	return references, nil
}

func (r *ItemRepository) GetSites(ctx context.Context) ([]Site, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, start_path, hostname, language
		FROM sites
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var site Site
		if err := rows.Scan(&site.Name, &site.StartPath, &site.Hostname, &site.Language); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}

	return sites, nil
}

func (r *ItemRepository) readableItem(ctx context.Context, row *sql.Row, lookup string) (*Item, error) {
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by %s: %w", lookup, err)
	}

	if security.UserFromContext(ctx).IsAnonymous {
		readable, err := r.anonymousCanRead(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if !readable {
			return nil, nil
		}
	}

	items := []Item{*item}
	if err := r.loadFields(ctx, items); err != nil {
		return nil, err
	}

	return &items[0], nil
}

func (r *ItemRepository) anonymousCanRead(ctx context.Context, id string) (bool, error) {
	var denied int
	err := r.db.QueryRowContext(ctx, `
		WITH RECURSIVE ancestors(id, parent_id, anonymous_read) AS (
			SELECT id, parent_id, anonymous_read FROM items WHERE id = ?
			UNION ALL
			SELECT i.id, i.parent_id, i.anonymous_read FROM items i JOIN ancestors a ON i.id = a.parent_id
		)
		SELECT COUNT(*) FROM ancestors WHERE anonymous_read = 0
	`, id).Scan(&denied)
	if err != nil {
		return false, fmt.Errorf("failed to check item access: %w", err)
	}

	return denied == 0, nil
}

func (r *ItemRepository) loadFields(ctx context.Context, items []Item) error {
	const chunkSize = 500

	index := make(map[string]int, len(items))
	for i := range items {
		items[i].Fields = make(map[string]string)
		index[items[i].ID] = i
	}

	for start := 0; start < len(items); start += chunkSize {
		end := min(start+chunkSize, len(items))

		args := make([]any, 0, end-start)
		for _, item := range items[start:end] {
			args = append(args, item.ID)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")

		rows, err := r.db.QueryContext(ctx, `
			SELECT item_id, name, value
			FROM item_fields
			WHERE item_id IN (`+placeholders+`)
		`, args...)
		if err != nil {
			return fmt.Errorf("failed to get item fields: %w", err)
		}

		for rows.Next() {
			var itemID, name, value string
			if err := rows.Scan(&itemID, &name, &value); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan field row: %w", err)
			}
			if i, ok := index[itemID]; ok {
				items[i].Fields[name] = value
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("error iterating field rows: %w", err)
		}
		rows.Close()
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var updatedAt string
	var anonymousRead int

	err := row.Scan(
		&item.ID, &item.ParentID, &item.Name, &item.Path, &item.TemplateID, &item.TemplateName,
		&updatedAt, &item.SortOrder, &anonymousRead,
	)
	if err != nil {
		return nil, err
	}

	item.AnonymousRead = anonymousRead != 0
	if updatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid updated_at %q for item %s: %w", updatedAt, item.ID, err)
		}
		item.UpdatedAt = parsed
	}

	return &item, nil
}

func reverseItems(items []Item) []Item {
	reversed := make([]Item, len(items))
	for i, item := range items {
		reversed[len(items)-1-i] = item
	}
	return reversed
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
