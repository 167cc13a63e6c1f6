package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/sitemap-xml/app/sitemap"
)

type SitemapTask struct {
	Task
	factory ManagerFactory
	status  *Status
}

func NewSitemapTask(taskType TaskType, factory ManagerFactory, status *Status) *SitemapTask {
	return &SitemapTask{
		Task:    NewTask(taskType),
		factory: factory,
		status:  status,
	}
}

func (t *SitemapTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	manager, err := t.factory(ctx)
	if err != nil {
		t.record(nil, sitemap.Report{}, err)
		return fmt.Errorf("failed to load sitemap configuration: %w", err)
	}

	report, err := t.run(ctx, manager)
	t.record(manager, report, err)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range report.Results {
		if result.Err != nil {
			failed++
		}
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"duration", t.GetDuration(),
		"results", len(report.Results),
		"failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d sitemap operations failed", failed, len(report.Results))
	}

	return nil
}

func (t *SitemapTask) run(ctx context.Context, manager SitemapManager) (sitemap.Report, error) {
	switch t.Type {
	case TaskTypeRefreshSitemaps:
		return manager.Refresh(ctx), nil
	case TaskTypeBuildSitemaps:
		return manager.BuildSitemaps(ctx), nil
	case TaskTypeBuildImageSitemaps:
		return manager.BuildImageSitemaps(ctx), nil
	case TaskTypeSubmitSitemaps:
		report := sitemap.Report{StartedAt: time.Now()}
		found, err := manager.SubmitToSearchEngines(ctx)
		report.Results = append(report.Results, sitemap.SiteResult{Kind: sitemap.KindSubmit, Skipped: !found, Err: err})
		report.FinishedAt = time.Now()
		return report, nil
	default:
		return sitemap.Report{}, fmt.Errorf("unknown task type: %s", t.Type)
	}
}

func (t *SitemapTask) record(manager SitemapManager, report sitemap.Report, err error) {
	if t.status == nil {
		return
	}

	run := RunStatus{
		TaskID:     t.ID,
		Type:       t.Type,
		Report:     report,
		FinishedAt: time.Now(),
	}
	if manager != nil && manager.Snapshot() != nil {
		run.Sites = manager.Snapshot().Sites
	}
	if err != nil {
		run.Error = err.Error()
	}

	t.status.Record(run)
}
