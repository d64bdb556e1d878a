package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
	"golang.org/x/sync/errgroup"
)

// MinQueryLength is the shortest query sent to the catalog.
const MinQueryLength = 2

const unknownStatus = "Unknown"

// Search queries the catalog. Short queries and failed lookups both yield an empty result; failures are logged.
func Search(ctx context.Context, catalog services.Catalog, query string, logger *log.Logger) []models.CatalogHit {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength || catalog == nil {
		return []models.CatalogHit{}
	}

	hits, err := catalog.Search(ctx, query)
	if err != nil {
		if logger != nil {
			logger.Error("search failed", "query", query, "error", err)
		}
		return []models.CatalogHit{}
	}
	return hits
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// AddFromHit resolves hit to a full catalog record and tracks it.
//
// The catalog id comes from the single-search result; descriptive fields come from hit.
// Nothing is inserted when any lookup fails. A tracked title yields [shared.ErrDuplicate].
func (m *Manager) AddFromHit(ctx context.Context, hit models.CatalogHit, progress chan<- ProgressUpdate) (*models.TrackedShow, error) {
	if m.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not configured", shared.ErrServiceUnavailable)
	}
	if m.Has(hit.Title) {
		return nil, fmt.Errorf("%w: %s", shared.ErrDuplicate, hit.Title)
	}

	sendProgress(progress, resolveShowUpdate(hit.Title))
	show, err := m.catalog.SingleSearch(ctx, hit.Title)
	if err != nil {
		return nil, wrapCatalogError(fmt.Sprintf("failed to resolve %q", hit.Title), err)
	}

	sendProgress(progress, fetchDetailsUpdate(show.ID))

	var (
		seasons  []services.CatalogSeason
		episodes []services.CatalogEpisode
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seasons, err = m.catalog.Seasons(gctx, show.ID)
		return err
	})
	g.Go(func() error {
		var err error
		episodes, err = m.catalog.Episodes(gctx, show.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapCatalogError(fmt.Sprintf("failed to load details of %q", hit.Title), err)
	}

	tracked := newTrackedShow(hit, show, seasons, episodes, m.now())
	if err := m.Add(tracked); err != nil {
		return nil, err
	}

	sendProgress(progress, insertShowUpdate(tracked))
	return &tracked, nil
}

// wrapCatalogError keeps catalog sentinels and classifies anything else as a transport failure.
func wrapCatalogError(msg string, err error) error {
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrTransport) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrTransport, msg, err)
}

// newTrackedShow combines a search hit with the resolved catalog record.
func newTrackedShow(hit models.CatalogHit, show *services.CatalogShow, seasons []services.CatalogSeason, episodes []services.CatalogEpisode, now time.Time) models.TrackedShow {
	status := show.Status
	if status == "" {
		status = unknownStatus
	}

	premiered := models.Year(models.NotAvailable)
	if year, _, _ := strings.Cut(show.Premiered, "-"); year != "" {
		premiered = models.Year(year)
	}

	genres := hit.Genres
	if genres == nil {
		genres = []string{}
	}

	return models.TrackedShow{
		ID:          show.ID,
		Title:       hit.Title,
		Image:       hit.Image,
		Rating:      hit.Rating,
		Genres:      genres,
		Summary:     hit.Summary,
		Site:        hit.Site,
		Status:      status,
		Premiered:   premiered,
		SeasonCount: len(seasons),
		NextEpisode: nextEpisode(episodes, now),
	}
}

// nextEpisode returns the earliest episode airing strictly after now. Ties keep catalog order.
func nextEpisode(episodes []services.CatalogEpisode, now time.Time) *models.EpisodeSnapshot {
	var next *services.CatalogEpisode
	var nextDate time.Time
	for i, ep := range episodes {
		airdate, err := shared.ParseDate(ep.Airdate)
		if err != nil || !airdate.After(now) {
			continue
		}
		if next == nil || airdate.Before(nextDate) {
			next, nextDate = &episodes[i], airdate
		}
	}
	if next == nil {
		return nil
	}
	return &models.EpisodeSnapshot{
		ID:      next.ID,
		Name:    next.Name,
		Season:  next.Season,
		Number:  next.Number,
		Airdate: next.Airdate,
	}
}
