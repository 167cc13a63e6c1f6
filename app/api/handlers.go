package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/sitemap-xml/app/sitemap"
	"github.com/lysyi3m/sitemap-xml/app/tasks"
)

func NewHandler(scheduler tasks.TaskSchedulerInterface, status *tasks.Status, loadSnapshot SnapshotLoader, database, version string) *Handler {
	return &Handler{
		scheduler:    scheduler,
		status:       status,
		loadSnapshot: loadSnapshot,
		database:     database,
		version:      version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"database":  h.database,
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if run, ok := h.status.Last(); ok {
		health["last_run"] = map[string]interface{}{
			"type":        string(run.Type),
			"finished_at": run.FinishedAt.Format(time.RFC3339),
			"failed":      run.Error != "" || run.Report.Failed(),
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSites(c *gin.Context) {
	snapshot, err := h.loadSnapshot(c.Request.Context())
	if err != nil {
		slog.Error("Failed to load site configuration", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load site configuration",
			"details": err.Error(),
		})
		return
	}

	run, hasRun := h.status.Last()

	siteList := make([]map[string]interface{}, 0, len(snapshot.Sites))
	for _, site := range snapshot.Sites {
		siteInfo := map[string]interface{}{
			"name":           site.Name,
			"filename":       site.Filename,
			"image_filename": site.ImageFilename,
			"start_path":     site.StartPath,
			"extra_path":     site.ExtraPath,
			"hostname":       site.Hostname,
			"server_url":     site.ServerURL,
			"language":       site.Language,
		}

		if hasRun {
			siteInfo["results"] = siteResults(run.Report, site.Name)
		}

		siteList = append(siteList, siteInfo)
	}

	response := map[string]interface{}{
		"sites":           siteList,
		"total":           len(siteList),
		"production":      snapshot.Settings.Production,
		"generate_robots": snapshot.Settings.GenerateRobots,
	}
	if hasRun {
		response["last_run"] = map[string]interface{}{
			"id":          run.TaskID,
			"type":        string(run.Type),
			"finished_at": run.FinishedAt.Format(time.RFC3339),
			"error":       run.Error,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIRefresh(c *gin.Context) {
	taskType := tasks.TaskTypeRefreshSitemaps
	if value := c.Query("type"); value != "" {
		parsed, ok := tasks.ParseTaskType(value)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown task type", "type": value})
			return
		}
		taskType = parsed
	}

	id, err := h.scheduler.Enqueue(taskType)
	if err != nil {
		slog.Error("Error enqueueing sitemap task", "type", string(taskType), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": id,
		"type":    string(taskType),
	})
}

func siteResults(report sitemap.Report, siteName string) []map[string]interface{} {
	results := make([]map[string]interface{}, 0, 2)
	for _, result := range report.Results {
		if result.Site != siteName {
			continue
		}
		entry := map[string]interface{}{
			"kind":    string(result.Kind),
			"file":    result.File,
			"entries": result.Entries,
			"skipped": result.Skipped,
		}
		if result.Err != nil {
			entry["error"] = result.Err.Error()
		}
		results = append(results, entry)
	}
	return results
}
