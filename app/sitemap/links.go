package sitemap

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/lysyi3m/sitemap-xml/app/database"
	"github.com/lysyi3m/sitemap-xml/app/sites"
)

const (
	MediaLibraryRoot = "/sitecore/media library"
	MediaURLPrefix   = "/-/media"
)

// LinkOptions scope a link to a site and, when HasLanguage is set, a language.
type LinkOptions struct {
	Site        sites.SiteConfig
	Language    language.Tag
	HasLanguage bool
}

// LinkProvider produces site relative URLs for content items.
type LinkProvider interface {
	ItemURL(item *database.Item, opts LinkOptions) string
}

// MediaProvider produces site relative URLs for media items.
type MediaProvider interface {
	MediaURL(item *database.Item, opts LinkOptions) string
}

type DefaultLinkProvider struct{}

func (DefaultLinkProvider) ItemURL(item *database.Item, opts LinkOptions) string {
	path := item.Path
	if start := strings.TrimSuffix(opts.Site.StartPath, "/"); start != "" && hasPathPrefix(path, start) {
		path = path[len(start):]
	}
	path = encodeName(path)

	if opts.Site.AddExtension && path != "" {
		path += ".aspx"
	}

	if opts.HasLanguage && opts.Site.LanguageEmbedding {
		path = "/" + strings.ToLower(opts.Language.String()) + path
	}

	if path == "" {
		return "/"
	}
	return path
}

type DefaultMediaProvider struct{}

func (DefaultMediaProvider) MediaURL(item *database.Item, opts LinkOptions) string {
	path := item.Path
	if hasPathPrefix(path, MediaLibraryRoot) {
		path = path[len(MediaLibraryRoot):]
	}

	extension := item.Field("Extension")
	if extension == "" {
		extension = "ashx"
	}

	url := MediaURLPrefix + encodeName(path) + "." + strings.ToLower(extension)
	if opts.HasLanguage {
		url += "?la=" + opts.Language.String()
	}
	return url
}

// parseLanguage reports false for an empty or unparsable language.
func parseLanguage(value string) (language.Tag, bool) {
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

func hasPathPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

func encodeName(path string) string {
	return strings.ReplaceAll(strings.ToLower(path), " ", "-")
}
