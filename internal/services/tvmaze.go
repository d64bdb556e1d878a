// TVMaze implementation of [Catalog]
//
// Endpoints documented at https://www.tvmaze.com/api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	"golang.org/x/time/rate"
)

const (
	tvmazeBaseURL = "https://api.tvmaze.com"
	// TVMaze allows 20 calls every 10 seconds per IP
	tvmazeRateLimit = 2.0
	tvmazeBurst     = 5
)

// TVMazeService implements [Catalog] against the public TVMaze REST API.
type TVMazeService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTVMazeService creates a catalog client from config. Zero values fall back to TVMaze defaults.
func NewTVMazeService(config shared.CatalogConfig, client *http.Client) *TVMazeService {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = tvmazeBaseURL
	}

	limit := config.RateLimit
	if limit <= 0 {
		limit = tvmazeRateLimit
	}

	if client == nil {
		timeout := time.Duration(config.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &TVMazeService{
		baseURL:    baseURL,
		userAgent:  config.UserAgent,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(limit), tvmazeBurst),
	}
}

// Search implements [Catalog.Search] via /search/shows.
func (s *TVMazeService) Search(ctx context.Context, query string) ([]models.CatalogHit, error) {
	var results []searchResult
	if err := s.get(ctx, "/search/shows?q="+url.QueryEscape(query), &results); err != nil {
		return nil, err
	}

	hits := make([]models.CatalogHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, r.Show.Hit())
	}
	return hits, nil
}

// SingleSearch implements [Catalog.SingleSearch] via /singlesearch/shows.
func (s *TVMazeService) SingleSearch(ctx context.Context, title string) (*CatalogShow, error) {
	var show CatalogShow
	if err := s.get(ctx, "/singlesearch/shows?q="+url.QueryEscape(title), &show); err != nil {
		return nil, err
	}
	if show.ID == 0 {
		return nil, fmt.Errorf("%w: no show matches %q", shared.ErrNotFound, title)
	}
	return &show, nil
}

// Seasons implements [Catalog.Seasons] via /shows/{id}/seasons.
func (s *TVMazeService) Seasons(ctx context.Context, showID int) ([]CatalogSeason, error) {
	var seasons []CatalogSeason
	if err := s.get(ctx, fmt.Sprintf("/shows/%d/seasons", showID), &seasons); err != nil {
		return nil, err
	}
	return seasons, nil
}

// Episodes implements [Catalog.Episodes] via /shows/{id}/episodes.
func (s *TVMazeService) Episodes(ctx context.Context, showID int) ([]CatalogEpisode, error) {
	var episodes []CatalogEpisode
	if err := s.get(ctx, fmt.Sprintf("/shows/%d/episodes", showID), &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// get waits for the rate limiter, performs a GET and decodes the JSON body into v.
//
// 404 maps to [shared.ErrNotFound]; every other failure maps to [shared.ErrTransport].
func (s *TVMazeService) get(ctx context.Context, path string, v any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s returned status %d", shared.ErrTransport, path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", shared.ErrTransport, path, err)
	}
	return nil
}

// PlainSummary converts a catalog summary (an HTML fragment) to plain text.
func PlainSummary(summary string) string {
	if summary == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return summary
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}
