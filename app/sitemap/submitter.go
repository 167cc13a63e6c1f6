package sitemap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const localhostURL = "http://localhost"

// Submitter pings search engines with sitemap URLs.
type Submitter struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewSubmitter(httpClient *http.Client, userAgent string, timeout time.Duration) *Submitter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Submitter{httpClient: httpClient, userAgent: userAgent, timeout: timeout}
}

// Submit requests "<template><escaped sitemap url>" for every engine template and
// returns the number of successful pings. Failures are logged, never returned.
func (s *Submitter) Submit(ctx context.Context, templates []string, sitemapURL string) int {
	if strings.Contains(sitemapURL, localhostURL) {
		slog.Debug("Skipping search engine ping for local sitemap", "url", sitemapURL)
		return 0
	}

	submitted := 0
	for _, template := range templates {
		pingURL := template + url.QueryEscape(sitemapURL)

		status, err := s.ping(ctx, pingURL)
		if err != nil {
			slog.Warn("Search engine ping failed", "url", pingURL, "error", err)
			continue
		}
		if status != http.StatusOK {
			slog.Error("Search engine rejected sitemap", "url", pingURL, "status", status)
			continue
		}

		slog.Info("Sitemap submitted", "url", pingURL)
		submitted++
	}

	return submitted
}

func (s *Submitter) ping(ctx context.Context, pingURL string) (int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pingURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send ping: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
