package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/lysyi3m/sitemap-xml/app/sites"
)

const testConfigItemPath = "/sitecore/system/Sitemap configuration"

func setupManagerRepository(engineURL string) *mockRepository {
	repo := newMockRepository()
	repo.add("content", "/sitecore/content", "", nil)
	repo.add("home", "/sitecore/content/Home", "page", nil)
	repo.add("about", "/sitecore/content/Home/About", "page", nil)
	repo.add("contact", "/sitecore/content/Home/Contact", "page", nil)
	repo.add("components", "/sitecore/content/Components", "", nil)
	repo.add("gallery", "/sitecore/content/Components/Gallery", "", nil)
	repo.add("media", "/sitecore/media library", "", nil)
	repo.add("logo", "/sitecore/media library/Logo", "", map[string]string{"Extension": "png"})
	repo.add("team", "/sitecore/media library/Team", "", map[string]string{"Extension": "jpg"})
	repo.add("system", "/sitecore/system", "", nil)
	repo.add("config", testConfigItemPath, "", map[string]string{
		sites.FieldSearchEngines: "engine|missing-engine",
	})
	repo.add("engine", "/sitecore/system/Engines/Example", "", map[string]string{
		sites.FieldHTTPRequest: engineURL + "/ping?sitemap=",
	})

	repo.link("home", "logo", "gallery")
	repo.link("gallery", "team", "logo")
	repo.link("about", "team")
	return repo
}

func managerSnapshot() *sites.Snapshot {
	return &sites.Snapshot{
		Sites: []sites.SiteConfig{
			{Name: "nostart", Filename: "nostart.xml"},
			{Name: "broken", Filename: "broken.xml", StartPath: "/broken"},
			{
				Name:           "website",
				Filename:       "sitemap.xml",
				ImageFilename:  "sitemap-images.xml",
				StartPath:      "/sitecore/content/Home",
				MediaPath:      "/sitecore/media library",
				ComponentsPath: "/sitecore/content/Components",
				Hostname:       "www.example.com",
				Gzip:           true,
			},
		},
		Settings: sites.Settings{
			EnabledTemplates: []string{"page"},
			ExcludeItems:     []string{"contact"},
			SearchEngines:    []string{"engine", "missing-engine"},
			ConfigItemPath:   testConfigItemPath,
			ConfigItemFound:  true,
		},
	}
}

func TestManagerBuildSitemaps(t *testing.T) {
	repo := setupManagerRepository("http://engine.invalid")
	repo.failPaths["/broken"] = true
	fs := afero.NewMemMapFs()

	manager := NewManager(repo, managerSnapshot(), Options{Fs: fs, Location: time.UTC})
	report := manager.BuildSitemaps(context.Background())

	if len(report.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(report.Results))
	}
	if !report.Results[0].Skipped {
		t.Error("Expected site without start path to be skipped")
	}
	if report.Results[1].Err == nil {
		t.Error("Expected broken site to fail")
	}
	if report.Results[2].Err != nil || report.Results[2].Entries != 2 {
		t.Errorf("Expected website to be built with 2 entries, got %+v", report.Results[2])
	}
	if !report.Failed() {
		t.Error("Expected report to record the failure")
	}

	data, err := afero.ReadFile(fs, "sitemap.xml")
	if err != nil {
		t.Fatalf("Expected sitemap to be written: %v", err)
	}
	xml := string(data)
	if !strings.Contains(xml, "<loc>http://www.example.com/</loc>") {
		t.Error("Expected root URL first")
	}
	if strings.Index(xml, "http://www.example.com/</loc>") > strings.Index(xml, "http://www.example.com/about</loc>") {
		t.Error("Expected root before descendants")
	}
	if strings.Contains(xml, "contact") {
		t.Error("Expected excluded item to be left out")
	}
	if exists, _ := afero.Exists(fs, "sitemap.xml.gz"); !exists {
		t.Error("Expected gzip companion")
	}
	if exists, _ := afero.Exists(fs, "nostart.xml"); exists {
		t.Error("Expected no file for skipped site")
	}
}

func TestManagerBuildImageSitemaps(t *testing.T) {
	repo := setupManagerRepository("http://engine.invalid")
	fs := afero.NewMemMapFs()

	manager := NewManager(repo, managerSnapshot(), Options{Fs: fs})
	report := manager.BuildImageSitemaps(context.Background())

	website := report.Results[2]
	if website.Err != nil || website.Entries != 2 {
		t.Fatalf("Expected 2 image entries, got %+v", website)
	}

	data, err := afero.ReadFile(fs, "sitemap-images.xml")
	if err != nil {
		t.Fatalf("Expected image sitemap to be written: %v", err)
	}
	xml := string(data)

	// home references the logo directly and again through the gallery component.
	if strings.Count(xml, "<image:loc>http://www.example.com/-/media/logo.png</image:loc>") != 1 {
		t.Errorf("Expected logo once, got:\n%s", xml)
	}
	if strings.Count(xml, "<image:loc>http://www.example.com/-/media/team.jpg</image:loc>") != 2 {
		t.Errorf("Expected team image for home and about, got:\n%s", xml)
	}
	if !strings.Contains(xml, "<loc>http://www.example.com/about</loc>") {
		t.Error("Expected about page entry")
	}
}

func TestManagerRefresh(t *testing.T) {
	recorder := &pingRecorder{}
	server := httptest.NewServer(recorder.handler(http.StatusOK))
	defer server.Close()

	repo := setupManagerRepository(server.URL)
	fs := afero.NewMemMapFs()

	snapshot := managerSnapshot()
	snapshot.Sites = snapshot.Sites[2:]
	snapshot.Settings.Production = true
	snapshot.Settings.GenerateRobots = true

	manager := NewManager(repo, snapshot, Options{
		Fs:        fs,
		Submitter: NewSubmitter(server.Client(), "test", time.Second),
	})
	report := manager.Refresh(context.Background())

	if report.Failed() {
		t.Fatalf("Expected refresh to succeed, got %+v", report.Results)
	}
	if len(report.Results) != 4 {
		t.Errorf("Expected 4 results, got %d", len(report.Results))
	}

	robots, err := afero.ReadFile(fs, RobotsFilename)
	if err != nil {
		t.Fatalf("Expected robots file: %v", err)
	}
	if string(robots) != "Sitemap: http://www.example.com/sitemap.xml\n" {
		t.Errorf("Unexpected robots content %q", robots)
	}

	if len(recorder.sitemaps) != 2 {
		t.Fatalf("Expected 2 pings, got %v", recorder.sitemaps)
	}
	if recorder.sitemaps[0] != "http://www.example.com/sitemap.xml" || recorder.sitemaps[1] != "http://www.example.com/sitemap-images.xml" {
		t.Errorf("Unexpected pinged sitemaps: %v", recorder.sitemaps)
	}

	manager.Refresh(context.Background())
	robots, _ = afero.ReadFile(fs, RobotsFilename)
	if strings.Count(string(robots), "Sitemap:") != 1 {
		t.Errorf("Expected robots entry not to be duplicated, got %q", robots)
	}
}

func TestManagerSubmitWithoutConfigurationItem(t *testing.T) {
	recorder := &pingRecorder{}
	server := httptest.NewServer(recorder.handler(http.StatusOK))
	defer server.Close()

	snapshot := managerSnapshot()
	snapshot.Settings.Production = true
	snapshot.Settings.ConfigItemFound = false

	manager := NewManager(setupManagerRepository(server.URL), snapshot, Options{
		Fs:        afero.NewMemMapFs(),
		Submitter: NewSubmitter(server.Client(), "test", time.Second),
	})
	found, err := manager.SubmitToSearchEngines(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found {
		t.Error("Expected submission to report missing configuration")
	}
	if len(recorder.sitemaps) != 0 {
		t.Errorf("Expected no pings, got %v", recorder.sitemaps)
	}
}

func TestManagerSubmitOutsideProduction(t *testing.T) {
	recorder := &pingRecorder{}
	server := httptest.NewServer(recorder.handler(http.StatusOK))
	defer server.Close()

	snapshot := managerSnapshot()
	snapshot.Sites = snapshot.Sites[2:]

	manager := NewManager(setupManagerRepository(server.URL), snapshot, Options{
		Fs:        afero.NewMemMapFs(),
		Submitter: NewSubmitter(server.Client(), "test", time.Second),
	})

	found, err := manager.SubmitToSearchEngines(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if found {
		t.Error("Expected submission to be skipped outside production")
	}
	if len(recorder.sitemaps) != 0 {
		t.Errorf("Expected no pings outside production, got %v", recorder.sitemaps)
	}
}

func TestManagerRefreshOutsideProduction(t *testing.T) {
	recorder := &pingRecorder{}
	server := httptest.NewServer(recorder.handler(http.StatusOK))
	defer server.Close()

	fs := afero.NewMemMapFs()
	snapshot := managerSnapshot()
	snapshot.Sites = snapshot.Sites[2:]

	manager := NewManager(setupManagerRepository(server.URL), snapshot, Options{
		Fs:        fs,
		Submitter: NewSubmitter(server.Client(), "test", time.Second),
	})
	report := manager.Refresh(context.Background())

	if report.Failed() {
		t.Fatalf("Expected refresh to succeed, got %+v", report.Results)
	}
	if len(report.Results) != 2 {
		t.Errorf("Expected only the two sitemap results, got %d", len(report.Results))
	}
	if len(recorder.sitemaps) != 0 {
		t.Errorf("Expected no pings outside production, got %v", recorder.sitemaps)
	}
	if exists, _ := afero.Exists(fs, RobotsFilename); exists {
		t.Error("Expected no robots file with robots generation disabled")
	}
	if exists, _ := afero.Exists(fs, "sitemap.xml"); !exists {
		t.Error("Expected sitemap to be written")
	}
}

func TestManagerWritesEmptySitemap(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "sitemap.xml", []byte("<loc>http://www.example.com/about</loc>"), 0644); err != nil {
		t.Fatalf("Failed to write stale sitemap: %v", err)
	}

	snapshot := managerSnapshot()
	snapshot.Sites = snapshot.Sites[2:]
	snapshot.Settings.EnabledTemplates = []string{"landing"}

	manager := NewManager(setupManagerRepository("http://engine.invalid"), snapshot, Options{Fs: fs})
	report := manager.Refresh(context.Background())

	for _, result := range report.Results {
		if result.Err != nil || result.Skipped || result.Entries != 0 {
			t.Errorf("Expected empty %s sitemap to be written, got %+v", result.Kind, result)
		}
	}

	data, err := afero.ReadFile(fs, "sitemap.xml")
	if err != nil {
		t.Fatalf("Expected sitemap to be written: %v", err)
	}
	if strings.Contains(string(data), "<url>") || !strings.HasSuffix(string(data), "</urlset>") {
		t.Errorf("Expected stale sitemap to be replaced by an empty urlset, got:\n%s", data)
	}
	if exists, _ := afero.Exists(fs, "sitemap-images.xml"); !exists {
		t.Error("Expected empty image sitemap to be written")
	}
}

func TestManagerSitemapURL(t *testing.T) {
	manager := NewManager(newMockRepository(), &sites.Snapshot{}, Options{Fs: afero.NewMemMapFs(), BaseURL: "http://localhost"})

	if got := manager.SitemapURL(sites.SiteConfig{}, "sitemap.xml"); got != "http://localhost/sitemap.xml" {
		t.Errorf("Unexpected sitemap URL '%s'", got)
	}
	if got := manager.SitemapURL(sites.SiteConfig{ServerURL: "example.com"}, "sitemap.xml"); got != "http://example.com/sitemap.xml" {
		t.Errorf("Unexpected sitemap URL '%s'", got)
	}
}
