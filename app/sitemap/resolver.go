package sitemap

import (
	"strings"

	"github.com/lysyi3m/sitemap-xml/app/database"
	"github.com/lysyi3m/sitemap-xml/app/sites"
)

const DefaultBaseURL = "http://localhost"

// Resolver turns items into absolute http URLs honoring the site's server URL
// and hostname overrides. It holds no state between calls.
type Resolver struct {
	baseURL string
	links   LinkProvider
	media   MediaProvider
}

func NewResolver(baseURL string, links LinkProvider, media MediaProvider) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if links == nil {
		links = DefaultLinkProvider{}
	}
	if media == nil {
		media = DefaultMediaProvider{}
	}
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		links:   links,
		media:   media,
	}
}

func (r *Resolver) ItemURL(item *database.Item, site sites.SiteConfig) string {
	return r.Absolute(site, r.links.ItemURL(item, r.options(site)))
}

func (r *Resolver) MediaURL(item *database.Item, site sites.SiteConfig) string {
	return r.Absolute(site, r.media.MediaURL(item, r.options(site)))
}

// Absolute normalizes a resolved URL: server URL override first, then the
// hostname, then the base URL of the host environment.
func (r *Resolver) Absolute(site sites.SiteConfig, url string) string {
	if site.ServerURL != "" {
		server := "http://" + strings.TrimPrefix(site.ServerURL, "http://")
		if hasForeignScheme(url) {
			return server + pathAfterHost(url)
		}
		return server + url
	}

	if site.Hostname != "" {
		return "http://" + site.Hostname + url
	}

	if hasForeignScheme(url) {
		return "http://" + url
	}

	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return r.baseURL + url
}

func (r *Resolver) options(site sites.SiteConfig) LinkOptions {
	tag, ok := parseLanguage(site.Language)
	return LinkOptions{Site: site, Language: tag, HasLanguage: ok}
}

func hasForeignScheme(url string) bool {
	return strings.Contains(url, "://") && !strings.HasPrefix(strings.ToLower(url), "http")
}

func pathAfterHost(url string) string {
	rest := url[strings.Index(url, "://")+3:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return rest[slash:]
	}
	return ""
}
