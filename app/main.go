package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/sitemap-xml/app/api"
	"github.com/lysyi3m/sitemap-xml/app/cfg"
	"github.com/lysyi3m/sitemap-xml/app/database"
	"github.com/lysyi3m/sitemap-xml/app/sitemap"
	"github.com/lysyi3m/sitemap-xml/app/sites"
	"github.com/lysyi3m/sitemap-xml/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting Sitemap XML", "version", appCfg.Version, "database", appCfg.Database)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		fatal("Failed to connect to database", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		fatal("Failed to run migrations", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	repo := database.NewItemRepository(db)

	if appCfg.SeedFile != "" {
		if err := repo.SeedFile(context.Background(), appCfg.SeedFile); err != nil {
			fatal("Failed to seed content", err)
		}
	}

	outputFs, err := sitemap.NewOutputFs(appCfg.OutputDir)
	if err != nil {
		fatal("Failed to prepare output directory", err)
	}

	pingTimeout := time.Duration(appCfg.PingTimeout) * time.Second
	submitter := sitemap.NewSubmitter(&http.Client{Timeout: pingTimeout}, appCfg.UserAgent, pingTimeout)

	loadSnapshot := func(ctx context.Context) (*sites.Snapshot, error) {
		return sites.Load(ctx, repo, sites.Options{
			SitesFile:      appCfg.SitesFile,
			ConfigItemPath: appCfg.ConfigItemPath,
			XmlnsTpl:       appCfg.XmlnsTpl,
			XmlnsImg:       appCfg.XmlnsImg,
			Production:     appCfg.Production,
			GenerateRobots: appCfg.GenerateRobots,
		})
	}

	factory := func(ctx context.Context) (tasks.SitemapManager, error) {
		snapshot, err := loadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		return sitemap.NewManager(repo, snapshot, sitemap.Options{
			Fs:        outputFs,
			BaseURL:   appCfg.BaseURL,
			Location:  time.Local,
			Submitter: submitter,
		}), nil
	}

	if appCfg.RunOnce {
		code := runOnce(factory)
		db.Close()
		os.Exit(code)
	}

	status := tasks.NewStatus()
	scheduler := tasks.NewScheduler(factory, status, time.Duration(appCfg.RefreshInterval)*time.Second)
	scheduler.Start()
	slog.Info("Background scheduler started", "refresh_interval", appCfg.RefreshInterval)

	handler := api.NewHandler(scheduler, status, loadSnapshot, appCfg.Database, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()
	slog.Info("Shutdown complete")
}

// runOnce performs a single refresh and returns the process exit code.
func runOnce(factory tasks.ManagerFactory) int {
	ctx := context.Background()

	manager, err := factory(ctx)
	if err != nil {
		slog.Error("Failed to load sitemap configuration", "error", err)
		return 1
	}

	report := manager.Refresh(ctx)
	for _, result := range report.Results {
		if result.Err != nil {
			slog.Error("Sitemap operation failed", "site", result.Site, "kind", string(result.Kind), "error", result.Err)
		}
	}

	if report.Failed() {
		return 1
	}

	slog.Info("Sitemaps refreshed", "results", len(report.Results), "duration", report.FinishedAt.Sub(report.StartedAt))
	return 0
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
