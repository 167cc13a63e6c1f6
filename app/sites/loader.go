package sites

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/sitemap-xml/app/database"
)

// Host sites that never get a sitemap of their own.
var systemSites = map[string]bool{
	"shell":           true,
	"login":           true,
	"admin":           true,
	"service":         true,
	"modules_shell":   true,
	"modules_website": true,
	"scheduler":       true,
	"system":          true,
	"publisher":       true,
}

type siteSource interface {
	GetItemByPath(ctx context.Context, path string) (*database.Item, error)
	GetSites(ctx context.Context) ([]database.Site, error)
}

// Load builds the run snapshot: the site list from the sites file (falling back
// to every non-system host site), completed with host site defaults, and the
// settings stored on the sitemap configuration item.
func Load(ctx context.Context, repo siteSource, opts Options) (*Snapshot, error) {
	configured, err := readSitesFile(opts.SitesFile)
	if err != nil {
		return nil, err
	}

	hostSites, err := repo.GetSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load host sites: %w", err)
	}

	siteList := configured
	if len(siteList) == 0 {
		siteList = fromHostSites(hostSites)
		slog.Debug("No sites configured, using host site definitions", "count", len(siteList))
	}
	applyHostDefaults(siteList, hostSites)

	settings, err := loadSettings(ctx, repo, opts)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Sites: siteList, Settings: settings}, nil
}

func readSitesFile(path string) ([]SiteConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("Sites file not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	siteList := make([]SiteConfig, 0, len(file.Sites))
	for i, site := range file.Sites {
		if site.Name == "" || site.Filename == "" {
			slog.Warn("Ignoring site without name or filename", "index", i, "site", site.Name)
			continue
		}
		siteList = append(siteList, site)
	}

	return siteList, nil
}

func fromHostSites(hostSites []database.Site) []SiteConfig {
	siteList := make([]SiteConfig, 0, len(hostSites))
	for _, host := range hostSites {
		if systemSites[host.Name] {
			continue
		}
		siteList = append(siteList, SiteConfig{
			Name:     host.Name,
			Filename: fmt.Sprintf("sitemap-%s.xml", host.Name),
		})
	}
	return siteList
}

func applyHostDefaults(siteList []SiteConfig, hostSites []database.Site) {
	byName := make(map[string]database.Site, len(hostSites))
	for _, host := range hostSites {
		byName[host.Name] = host
	}

	for i := range siteList {
		host, ok := byName[siteList[i].Name]
		if !ok {
			continue
		}
		if siteList[i].StartPath == "" {
			siteList[i].StartPath = host.StartPath
		}
		if siteList[i].Hostname == "" {
			siteList[i].Hostname = host.Hostname
		}
		if siteList[i].Language == "" {
			siteList[i].Language = host.Language
		}
	}
}

func loadSettings(ctx context.Context, repo siteSource, opts Options) (Settings, error) {
	settings := Settings{
		XmlnsTpl:       opts.XmlnsTpl,
		XmlnsImg:       opts.XmlnsImg,
		Production:     opts.Production,
		GenerateRobots: opts.GenerateRobots,
		ConfigItemPath: opts.ConfigItemPath,
	}

	configItem, err := repo.GetItemByPath(ctx, opts.ConfigItemPath)
	if err != nil {
		return settings, fmt.Errorf("failed to load sitemap configuration item: %w", err)
	}
	if configItem == nil {
		slog.Warn("Sitemap configuration item not found, no templates enabled", "path", opts.ConfigItemPath)
		return settings, nil
	}

	settings.ConfigItemFound = true
	settings.EnabledTemplates = SplitList(configItem.Field(FieldEnabledTemplates))
	settings.ExcludeItems = SplitList(configItem.Field(FieldExcludeItems))
	settings.ExcludeQuery = strings.TrimSpace(configItem.Field(FieldExcludeByQuery))
	settings.SearchEngines = SplitList(configItem.Field(FieldSearchEngines))

	return settings, nil
}

// SplitList splits a '|' separated configuration value, dropping empty tokens.
func SplitList(value string) []string {
	var result []string
	for _, token := range strings.Split(value, "|") {
		if token = strings.TrimSpace(token); token != "" {
			result = append(result, token)
		}
	}
	return result
}
