package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
)

func breakingBadCatalog() *mockCatalog {
	c := newMockCatalog()
	c.shows["Breaking Bad"] = &services.CatalogShow{ID: 169, Name: "Breaking Bad", Status: "Ended", Premiered: "2008-01-20"}
	c.seasons[169] = []services.CatalogSeason{{ID: 1, Number: 1}, {ID: 2, Number: 2}, {ID: 3, Number: 3}}
	c.episodes[169] = []services.CatalogEpisode{
		{ID: 10, Name: "Pilot", Season: 1, Number: 1, Airdate: "2008-01-20"},
		{ID: 11, Name: "Today", Season: 3, Number: 1, Airdate: "2025-06-15"},
		{ID: 12, Name: "Later", Season: 3, Number: 3, Airdate: "2025-07-01"},
		{ID: 13, Name: "Sooner But Listed Last", Season: 3, Number: 2, Airdate: "2025-06-20"},
	}
	return c
}

var breakingBadHit = models.CatalogHit{
	ID:      9999,
	Title:   "Breaking Bad",
	Image:   "https://static.tvmaze.com/bb.jpg",
	Rating:  models.NewRating(9.2),
	Genres:  []string{"Drama", "Crime"},
	Summary: "<p>Chemistry.</p>",
	Site:    "https://amc.com/bb",
}

func TestAddFromHit(t *testing.T) {
	t.Run("Tracks Resolved Show", func(t *testing.T) {
		store := &memoryStore{}
		m := newTestManager(t, ManagerOpts{Catalog: breakingBadCatalog(), Store: store})
		progress := make(chan ProgressUpdate, 10)

		show, err := m.AddFromHit(context.Background(), breakingBadHit, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		m.Wait()

		if show.ID != 169 {
			t.Errorf("expected id from single search, got %d", show.ID)
		}
		if show.Image != breakingBadHit.Image || show.Site != breakingBadHit.Site || show.Rating != breakingBadHit.Rating {
			t.Errorf("expected descriptive fields from hit, got %+v", show)
		}
		if show.Premiered != "2008" || show.Status != "Ended" || show.SeasonCount != 3 {
			t.Errorf("unexpected derived fields: %+v", show)
		}
		if show.NextEpisode == nil || show.NextEpisode.Name != "Later" {
			t.Errorf("expected first future episode in catalog order, got %+v", show.NextEpisode)
		}
		if show.Watched || show.Notes != "" {
			t.Errorf("expected fresh show, got %+v", show)
		}

		if _, saves := store.snapshot(); saves != 1 {
			t.Errorf("expected one save, got %d", saves)
		}

		close(progress)
		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) != 3 || phases[0] != ResolveShow || phases[2] != InsertShow {
			t.Errorf("unexpected progress phases: %v", phases)
		}
	})

	t.Run("Duplicate Skips Catalog", func(t *testing.T) {
		catalog := breakingBadCatalog()
		m := newTestManager(t, ManagerOpts{Catalog: catalog})
		m.Add(models.TrackedShow{ID: 1, Title: "Breaking Bad"})

		_, err := m.AddFromHit(context.Background(), breakingBadHit, nil)
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
		if catalog.count("singlesearch") != 0 {
			t.Error("expected no catalog lookups for a tracked title")
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{Catalog: newMockCatalog()})

		_, err := m.AddFromHit(context.Background(), breakingBadHit, nil)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if m.Len() != 0 {
			t.Errorf("expected nothing inserted, got %d", m.Len())
		}
	})

	t.Run("Detail Failure Inserts Nothing", func(t *testing.T) {
		catalog := breakingBadCatalog()
		catalog.seasonsErr = errors.New("connection reset")
		m := newTestManager(t, ManagerOpts{Catalog: catalog})

		_, err := m.AddFromHit(context.Background(), breakingBadHit, nil)
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
		if m.Len() != 0 {
			t.Errorf("expected nothing inserted, got %d", m.Len())
		}
	})

	t.Run("No Catalog", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})
		if _, err := m.AddFromHit(context.Background(), breakingBadHit, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestNewTrackedShow(t *testing.T) {
	t.Run("Fallbacks", func(t *testing.T) {
		show := newTrackedShow(models.CatalogHit{Title: "Bare"}, &services.CatalogShow{ID: 5}, nil, nil, fixedNow)

		if show.Status != "Unknown" {
			t.Errorf("expected Unknown status, got %q", show.Status)
		}
		if show.Premiered != models.NotAvailable {
			t.Errorf("expected N/A premiered, got %q", show.Premiered)
		}
		if show.SeasonCount != 0 || show.NextEpisode != nil {
			t.Errorf("expected no seasons or next episode, got %+v", show)
		}
		if show.Genres == nil {
			t.Error("expected non-nil genres")
		}
	})

	t.Run("Episode Today Is Not Next", func(t *testing.T) {
		episodes := []services.CatalogEpisode{{ID: 1, Name: "Today", Airdate: "2025-06-15"}, {ID: 2, Name: "Blank"}}
		if ep := nextEpisode(episodes, fixedNow); ep != nil {
			t.Errorf("expected no next episode, got %+v", ep)
		}
	})

	t.Run("Earliest Future Episode Wins", func(t *testing.T) {
		episodes := []services.CatalogEpisode{
			{ID: 1, Name: "Pilot", Airdate: "2020-01-01"},
			{ID: 2, Name: "Holiday Special", Airdate: "2025-12-25"},
			{ID: 3, Name: "Season Premiere", Season: 2, Number: 1, Airdate: "2025-11-01"},
			{ID: 4, Name: "Same Night", Season: 2, Number: 2, Airdate: "2025-11-01"},
		}

		ep := nextEpisode(episodes, fixedNow)
		if ep == nil {
			t.Fatal("expected a next episode")
		}
		if ep.ID != 3 || ep.Airdate != "2025-11-01" {
			t.Errorf("expected the earliest airdate with catalog order on ties, got %+v", ep)
		}
	})
}
