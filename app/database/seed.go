package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed describes a content tree fixture.
type Seed struct {
	Sites []SeedSite `yaml:"sites"`
	Items []SeedItem `yaml:"items"`
}

type SeedSite struct {
	Name      string `yaml:"name"`
	StartPath string `yaml:"start_path"`
	Hostname  string `yaml:"hostname"`
	Language  string `yaml:"language"`
}

type SeedItem struct {
	ID            string            `yaml:"id"`
	Path          string            `yaml:"path"`
	TemplateID    string            `yaml:"template_id"`
	TemplateName  string            `yaml:"template_name"`
	UpdatedAt     time.Time         `yaml:"updated_at"`
	SortOrder     int               `yaml:"sort_order"`
	AnonymousRead *bool             `yaml:"anonymous_read"`
	Fields        map[string]string `yaml:"fields"`
	Links         []string          `yaml:"links"` // target ids or absolute paths
}

// SeedFile imports the YAML content tree at path.
func (r *ItemRepository) SeedFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	return r.Seed(ctx, seed)
}

// Seed upserts sites, items, fields and links in a single transaction. Parents
// are derived from item paths and must be part of the seed or already stored.
func (r *ItemRepository) Seed(ctx context.Context, seed Seed) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, site := range seed.Sites {
		if site.Name == "" {
			return fmt.Errorf("site at index %d has no name", i)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sites (name, start_path, hostname, language, sort_order)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				start_path = excluded.start_path,
				hostname = excluded.hostname,
				language = excluded.language,
				sort_order = excluded.sort_order
		`, site.Name, site.StartPath, site.Hostname, site.Language, i)
		if err != nil {
			return fmt.Errorf("failed to upsert site %s: %w", site.Name, err)
		}
	}

	items := make([]SeedItem, len(seed.Items))
	copy(items, seed.Items)
	for i := range items {
		items[i].ID = NormalizeID(items[i].ID)
		items[i].Path = normalizePath(items[i].Path)
		if items[i].ID == "" || !strings.HasPrefix(items[i].Path, "/") {
			return fmt.Errorf("item at index %d needs an id and an absolute path", i)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.Count(items[i].Path, "/") < strings.Count(items[j].Path, "/")
	})

	idByPath := make(map[string]string, len(items))
	for _, item := range items {
		parentID, err := lookupParentID(ctx, tx, idByPath, item.Path)
		if err != nil {
			return err
		}

		anonymousRead := true
		if item.AnonymousRead != nil {
			anonymousRead = *item.AnonymousRead
		}
		updatedAt := item.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (id, parent_id, name, path, template_id, template_name, updated_at, sort_order, anonymous_read)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				parent_id = excluded.parent_id,
				name = excluded.name,
				path = excluded.path,
				template_id = excluded.template_id,
				template_name = excluded.template_name,
				updated_at = excluded.updated_at,
				sort_order = excluded.sort_order,
				anonymous_read = excluded.anonymous_read
		`, item.ID, parentID, itemName(item.Path), item.Path, NormalizeID(item.TemplateID), item.TemplateName,
			updatedAt.Format(time.RFC3339), item.SortOrder, boolToInt(anonymousRead))
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", item.Path, err)
		}
		idByPath[strings.ToLower(item.Path)] = item.ID

		for name, value := range item.Fields {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO item_fields (item_id, name, value) VALUES (?, ?, ?)
				ON CONFLICT(item_id, name) DO UPDATE SET value = excluded.value
			`, item.ID, name, value)
			if err != nil {
				return fmt.Errorf("failed to store field %s of %s: %w", name, item.Path, err)
			}
		}
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `DELETE FROM item_links WHERE source_id = ?`, item.ID); err != nil {
			return fmt.Errorf("failed to clear links of %s: %w", item.Path, err)
		}

		for position, link := range item.Links {
			targetID, targetPath, err := resolveLinkTarget(ctx, tx, link)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO item_links (source_id, target_id, target_path, position) VALUES (?, ?, ?, ?)
			`, item.ID, targetID, targetPath, position)
			if err != nil {
				return fmt.Errorf("failed to store link %s of %s: %w", link, item.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	slog.Info("Content seeded", "sites", len(seed.Sites), "items", len(items))
	return nil
}

func lookupParentID(ctx context.Context, tx *sql.Tx, idByPath map[string]string, path string) (any, error) {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return nil, nil
	}
	parentPath := path[:idx]

	if id, ok := idByPath[strings.ToLower(parentPath)]; ok {
		return id, nil
	}

	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM items WHERE path = ? COLLATE NOCASE`, parentPath).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up parent %s: %w", parentPath, err)
	}
	return id, nil
}

// resolveLinkTarget accepts either an item id or an absolute item path. Dangling
// ids are kept, the link index may point at deleted items.
func resolveLinkTarget(ctx context.Context, tx *sql.Tx, link string) (string, string, error) {
	var id, path string
	var err error

	if strings.HasPrefix(link, "/") {
		err = tx.QueryRowContext(ctx, `SELECT id, path FROM items WHERE path = ? COLLATE NOCASE`, normalizePath(link)).Scan(&id, &path)
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("link target %s does not exist", link)
		}
	} else {
		id = NormalizeID(link)
		err = tx.QueryRowContext(ctx, `SELECT path FROM items WHERE id = ?`, id).Scan(&path)
		if err == sql.ErrNoRows {
			return id, "", nil
		}
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve link target %s: %w", link, err)
	}

	return id, path, nil
}

func itemName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
