package database

import "context"

type ContentRepository interface {
	GetItemByPath(ctx context.Context, path string) (*Item, error)
	GetItemByID(ctx context.Context, id string) (*Item, error)
	GetDescendants(ctx context.Context, item *Item) ([]Item, error)
	GetReferences(ctx context.Context, item *Item) ([]Reference, error)
	GetSites(ctx context.Context) ([]Site, error)
}

var _ ContentRepository = (*ItemRepository)(nil)
