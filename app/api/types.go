package api

import (
	"context"

	"github.com/lysyi3m/sitemap-xml/app/sites"
	"github.com/lysyi3m/sitemap-xml/app/tasks"
)

// SnapshotLoader loads the current site configuration.
type SnapshotLoader func(ctx context.Context) (*sites.Snapshot, error)

type Handler struct {
	scheduler    tasks.TaskSchedulerInterface
	status       *tasks.Status
	loadSnapshot SnapshotLoader
	database     string
	version      string
}
