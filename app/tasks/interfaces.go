package tasks

import (
	"context"

	"github.com/lysyi3m/sitemap-xml/app/sitemap"
	"github.com/lysyi3m/sitemap-xml/app/sites"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to run sitemap tasks in the background.
// Example usage:
//
//	scheduler := NewScheduler(factory, status, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	id, err := scheduler.Enqueue(TaskTypeRefreshSitemaps)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Enqueue(taskType TaskType) (string, error)
}

// SitemapManager is the part of sitemap.Manager the tasks drive.
type SitemapManager interface {
	BuildSitemaps(ctx context.Context) sitemap.Report
	BuildImageSitemaps(ctx context.Context) sitemap.Report
	SubmitToSearchEngines(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) sitemap.Report
	Snapshot() *sites.Snapshot
}

var _ SitemapManager = (*sitemap.Manager)(nil)

// ManagerFactory builds a manager over a freshly loaded site snapshot.
type ManagerFactory func(ctx context.Context) (SitemapManager, error)
