package sitemap

import (
	"time"

	"github.com/lysyi3m/sitemap-xml/app/database"
)

type Kind string

const (
	KindStandard Kind = "standard"
	KindImages   Kind = "images"
	KindRobots   Kind = "robots"
	KindSubmit   Kind = "submit"
)

// SitemapEntry is one page of the standard sitemap.
type SitemapEntry struct {
	Item         database.Item
	URL          string
	LastModified time.Time
}

type ImageEntry struct {
	ID  string
	URL string
}

// ImageSitemapEntry is one page of the image sitemap with its distinct images
// in discovery order.
type ImageSitemapEntry struct {
	URL    string
	Images []ImageEntry
}

type SiteResult struct {
	Site    string
	Kind    Kind
	File    string
	Entries int
	Skipped bool
	Err     error
}

type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SiteResult
}

// Failed reports whether any site of the run ended with an error.
func (r Report) Failed() bool {
	for _, result := range r.Results {
		if result.Err != nil {
			return true
		}
	}
	return false
}

func (r *Report) merge(other Report) {
	if r.StartedAt.IsZero() {
		r.StartedAt = other.StartedAt
	}
	r.FinishedAt = other.FinishedAt
	r.Results = append(r.Results, other.Results...)
}
