package sitemap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/lysyi3m/sitemap-xml/app/database"
	"github.com/lysyi3m/sitemap-xml/app/sites"
)

type Options struct {
	Fs        afero.Fs
	BaseURL   string
	Location  *time.Location
	Submitter *Submitter
	Links     LinkProvider
	Media     MediaProvider
}

// Manager runs the sitemap operations for every site of one snapshot.
// Sites are processed sequentially in configuration order and a failing site
// never stops the ones after it.
type Manager struct {
	repo      database.ContentRepository
	snapshot  *sites.Snapshot
	selector  *Selector
	walker    *Walker
	resolver  *Resolver
	generator *Generator
	writer    *Writer
	robots    *Robots
	submitter *Submitter
	location  *time.Location
}

func NewManager(repo database.ContentRepository, snapshot *sites.Snapshot, opts Options) *Manager {
	settings := snapshot.Settings

	query, err := CompileExcludeQuery(settings.ExcludeQuery)
	if err != nil {
		slog.Error("Invalid exclusion query, continuing without it", "error", err)
		query = nil
	}

	location := opts.Location
	if location == nil {
		location = time.Local
	}

	submitter := opts.Submitter
	if submitter == nil {
		submitter = NewSubmitter(nil, "", 0)
	}

	return &Manager{
		repo:      repo,
		snapshot:  snapshot,
		selector:  NewSelector(repo, settings, query),
		walker:    NewWalker(repo),
		resolver:  NewResolver(opts.BaseURL, opts.Links, opts.Media),
		generator: NewGenerator(settings.XmlnsTpl, settings.XmlnsImg),
		writer:    NewWriter(opts.Fs),
		robots:    NewRobots(opts.Fs),
		submitter: submitter,
		location:  location,
	}
}

func (m *Manager) Snapshot() *sites.Snapshot {
	return m.snapshot
}

// BuildSitemaps writes the standard sitemap of every site.
func (m *Manager) BuildSitemaps(ctx context.Context) Report {
	report := Report{StartedAt: time.Now()}
	for _, site := range m.snapshot.Sites {
		report.Results = append(report.Results, m.buildStandard(ctx, site))
	}
	report.FinishedAt = time.Now()
	return report
}

// BuildImageSitemaps writes the image sitemap of every site that names an
// image file.
func (m *Manager) BuildImageSitemaps(ctx context.Context) Report {
	report := Report{StartedAt: time.Now()}
	for _, site := range m.snapshot.Sites {
		report.Results = append(report.Results, m.buildImages(ctx, site))
	}
	report.FinishedAt = time.Now()
	return report
}

// RegisterRobots lists the standard sitemap of every site in robots.txt.
func (m *Manager) RegisterRobots(ctx context.Context) error {
	var urls []string
	for _, site := range m.snapshot.Sites {
		urls = append(urls, m.SitemapURL(site, site.Filename))
	}

	added, err := m.robots.Register(urls)
	if err != nil {
		return err
	}

	slog.Info("Robots file updated", "file", RobotsFilename, "added", added)
	return nil
}

// SubmitToSearchEngines pings every configured search engine with every sitemap
// URL. It does nothing outside production and returns false when the sitemap
// configuration item does not exist.
func (m *Manager) SubmitToSearchEngines(ctx context.Context) (bool, error) {
	settings := m.snapshot.Settings
	if !settings.Production {
		slog.Debug("Not in production, skipping search engines")
		return false, nil
	}
	if !settings.ConfigItemFound {
		slog.Warn("Sitemap configuration item not found, skipping search engines", "path", settings.ConfigItemPath)
		return false, nil
	}

	templates, err := m.engineTemplates(ctx, settings.SearchEngines)
	if err != nil {
		return false, err
	}

	submitted := 0
	for _, site := range m.snapshot.Sites {
		submitted += m.submitter.Submit(ctx, templates, m.SitemapURL(site, site.Filename))
		if site.ImageFilename != "" {
			submitted += m.submitter.Submit(ctx, templates, m.SitemapURL(site, site.ImageFilename))
		}
	}

	slog.Info("Search engines notified", "engines", len(templates), "submitted", submitted)
	return true, nil
}

// Refresh builds both sitemap variants, then registers them in robots.txt and
// notifies search engines when those are enabled.
func (m *Manager) Refresh(ctx context.Context) Report {
	report := m.BuildSitemaps(ctx)
	report.merge(m.BuildImageSitemaps(ctx))

	settings := m.snapshot.Settings
	if settings.GenerateRobots {
		result := SiteResult{Kind: KindRobots, File: RobotsFilename, Entries: len(m.snapshot.Sites)}
		if err := m.RegisterRobots(ctx); err != nil {
			slog.Error("Failed to register sitemaps in robots file", "error", err)
			result.Err = err
		}
		report.Results = append(report.Results, result)
	}

	if settings.Production {
		result := SiteResult{Kind: KindSubmit}
		found, err := m.SubmitToSearchEngines(ctx)
		if err != nil {
			slog.Error("Failed to submit sitemaps", "error", err)
			result.Err = err
		}
		result.Skipped = !found
		report.Results = append(report.Results, result)
	}

	report.FinishedAt = time.Now()
	return report
}

// SitemapURL is the public URL of a file written for site.
func (m *Manager) SitemapURL(site sites.SiteConfig, filename string) string {
	return m.resolver.Absolute(site, "/"+filename)
}

func (m *Manager) buildStandard(ctx context.Context, site sites.SiteConfig) SiteResult {
	result := SiteResult{Site: site.Name, Kind: KindStandard, File: site.Filename}

	items, skip := m.selectItems(ctx, site, &result)
	if skip {
		return result
	}

	entries := make([]SitemapEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, SitemapEntry{
			Item:         item,
			URL:          m.resolver.ItemURL(&item, site),
			LastModified: item.UpdatedAt.In(m.location),
		})
	}

	data, err := m.generator.Standard(entries)
	if err != nil {
		return m.fail(result, fmt.Errorf("failed to generate sitemap: %w", err))
	}

	if err := m.writer.Write(site.Filename, data, site.Gzip); err != nil {
		return m.fail(result, err)
	}

	result.Entries = len(entries)
	slog.Info("Sitemap generated", "site", site.Name, "file", site.Filename, "entries", result.Entries)
	return result
}

func (m *Manager) buildImages(ctx context.Context, site sites.SiteConfig) SiteResult {
	result := SiteResult{Site: site.Name, Kind: KindImages, File: site.ImageFilename}

	if site.ImageFilename == "" {
		slog.Debug("No image sitemap configured", "site", site.Name)
		result.Skipped = true
		return result
	}

	items, skip := m.selectItems(ctx, site, &result)
	if skip {
		return result
	}

	entries := make([]ImageSitemapEntry, 0, len(items))
	for _, item := range items {
		media, err := m.walker.Run(ctx, &item, site)
		if err != nil {
			return m.fail(result, err)
		}
		if len(media) == 0 {
			continue
		}

		entry := ImageSitemapEntry{URL: m.resolver.ItemURL(&item, site)}
		for _, image := range media {
			entry.Images = append(entry.Images, ImageEntry{
				ID:  image.ID,
				URL: m.resolver.MediaURL(&image, site),
			})
		}
		entries = append(entries, entry)
	}

	data, err := m.generator.Images(entries)
	if err != nil {
		return m.fail(result, fmt.Errorf("failed to generate image sitemap: %w", err))
	}

	if err := m.writer.Write(site.ImageFilename, data, site.Gzip); err != nil {
		return m.fail(result, err)
	}

	result.Entries = len(entries)
	slog.Info("Image sitemap generated", "site", site.Name, "file", site.ImageFilename, "entries", result.Entries)
	return result
}

func (m *Manager) selectItems(ctx context.Context, site sites.SiteConfig, result *SiteResult) ([]database.Item, bool) {
	if site.StartPath == "" {
		slog.Warn("Skipping site without start path", "site", site.Name)
		result.Skipped = true
		return nil, true
	}

	root, err := m.repo.GetItemByPath(ctx, site.StartPath)
	if err != nil {
		*result = m.fail(*result, fmt.Errorf("failed to get start item %s: %w", site.StartPath, err))
		return nil, true
	}
	if root == nil {
		slog.Warn("Start item not found, skipping site", "site", site.Name, "start_path", site.StartPath)
		result.Skipped = true
		return nil, true
	}

	items, err := m.selector.Run(ctx, site.StartPath, site.ExtraPath)
	if err != nil {
		*result = m.fail(*result, err)
		return nil, true
	}
	if len(items) == 0 {
		slog.Warn("No items selected, writing empty sitemap", "site", site.Name, "start_path", site.StartPath)
	}

	return items, false
}

func (m *Manager) engineTemplates(ctx context.Context, engineIDs []string) ([]string, error) {
	templates := make([]string, 0, len(engineIDs))
	for _, id := range engineIDs {
		engine, err := m.repo.GetItemByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load search engine %s: %w", id, err)
		}
		if engine == nil {
			slog.Warn("Search engine item not found", "id", id)
			continue
		}
		if template := engine.Field(sites.FieldHTTPRequest); template != "" {
			templates = append(templates, template)
		}
	}
	return templates, nil
}

func (m *Manager) fail(result SiteResult, err error) SiteResult {
	slog.Error("Failed to build sitemap", "site", result.Site, "kind", result.Kind, "error", err)
	result.Err = err
	return result
}
