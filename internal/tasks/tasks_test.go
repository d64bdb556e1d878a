package tasks

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/repositories"
	"github.com/desertthunder/tvtrack/internal/shared"
	tu "github.com/desertthunder/tvtrack/internal/testing"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func testLogger() *log.Logger { return shared.NewLogger(io.Discard) }

func newTestManager(t *testing.T, opts ManagerOpts) *Manager {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	m, err := NewManager(opts)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m
}

func TestNewManager(t *testing.T) {
	t.Run("Loads Stored State", func(t *testing.T) {
		store := &memoryStore{shows: tu.SampleShows()}
		prefs := newMemoryPrefs(
			repositories.PrefTheme, "light",
			repositories.PrefFilter, "watched",
			repositories.PrefSort, "rating",
			repositories.PrefGroup, "genre",
		)

		m := newTestManager(t, ManagerOpts{Store: store, Preferences: prefs})

		if m.Len() != 3 {
			t.Errorf("expected 3 shows, got %d", m.Len())
		}
		if m.Theme() != models.ThemeLight || m.Filter() != models.FilterWatched {
			t.Errorf("unexpected selectors: %s %s", m.Theme(), m.Filter())
		}
		if m.Sort() != models.SortRating || m.Group() != models.GroupGenre {
			t.Errorf("unexpected selectors: %s %s", m.Sort(), m.Group())
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})

		if m.Theme() != models.ThemeDark {
			t.Errorf("expected dark theme, got %s", m.Theme())
		}
		if m.Filter() != models.FilterAll || m.Sort() != models.SortAlphabetical {
			t.Errorf("unexpected selectors: %s %s", m.Filter(), m.Sort())
		}
		if m.Identity().SignedIn() {
			t.Error("expected signed out")
		}
	})

	t.Run("Invalid Stored Preference Falls Back", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{Preferences: newMemoryPrefs(repositories.PrefTheme, "sepia")})
		if m.Theme() != models.ThemeDark {
			t.Errorf("expected dark theme, got %s", m.Theme())
		}
	})

	t.Run("Store Error", func(t *testing.T) {
		_, err := NewManager(ManagerOpts{Store: &memoryStore{listErr: shared.ErrPersistence}, Logger: testLogger()})
		if !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})
}

func TestManagerMutations(t *testing.T) {
	foo := models.TrackedShow{ID: 1, Title: "Foo", Genres: []string{"Drama"}}

	t.Run("Add Persists Snapshot", func(t *testing.T) {
		store := &memoryStore{}
		m := newTestManager(t, ManagerOpts{Store: store})

		if err := m.Add(foo); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		m.Wait()

		stored, saves := store.snapshot()
		if saves != 1 || len(stored) != 1 || stored[0].Title != "Foo" {
			t.Errorf("expected one save with Foo, got %d %+v", saves, stored)
		}
	})

	t.Run("Duplicate Title", func(t *testing.T) {
		store := &memoryStore{}
		m := newTestManager(t, ManagerOpts{Store: store})

		m.Add(foo)
		err := m.Add(models.TrackedShow{ID: 2, Title: "Foo"})
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
		m.Wait()

		if m.Len() != 1 {
			t.Errorf("expected 1 show, got %d", m.Len())
		}
		if _, saves := store.snapshot(); saves != 1 {
			t.Errorf("expected rejected add not to persist, got %d saves", saves)
		}
	})

	t.Run("ToggleWatched Twice", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})
		m.Add(foo)

		m.ToggleWatched(1)
		if s, _ := m.Find(1); !s.Watched {
			t.Error("expected watched after first toggle")
		}
		m.ToggleWatched(1)
		if s, _ := m.Find(1); s.Watched {
			t.Error("expected unwatched after second toggle")
		}
	})

	t.Run("Missing ID", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})

		if err := m.ToggleWatched(99); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("ToggleWatched: expected ErrNotFound, got %v", err)
		}
		if err := m.Delete(99); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("Delete: expected ErrNotFound, got %v", err)
		}
		if err := m.UpdateNote(99, "x"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("UpdateNote: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateNote And Delete", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})
		m.Add(foo)

		if err := m.UpdateNote(1, "  keep spacing  "); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s, _ := m.Find(1); s.Notes != "  keep spacing  " {
			t.Errorf("expected verbatim notes, got %q", s.Notes)
		}

		if err := m.Delete(1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m.Len() != 0 {
			t.Errorf("expected empty collection, got %d", m.Len())
		}
	})

	t.Run("Observers See Increasing Generations", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})

		var (
			mu   sync.Mutex
			gens []uint64
		)
		m.OnChange(func(ctx context.Context, c Change) {
			mu.Lock()
			defer mu.Unlock()
			gens = append(gens, c.Generation)
		})

		m.Add(foo)
		m.ToggleWatched(1)
		m.Add(foo)
		m.Wait()

		if len(gens) != 2 {
			t.Fatalf("expected 2 changes, got %v", gens)
		}
		if gens[0]+gens[1] != 3 {
			t.Errorf("expected generations 1 and 2, got %v", gens)
		}
	})

	t.Run("Persistence Failure Keeps State", func(t *testing.T) {
		store := &memoryStore{saveErr: shared.ErrPersistence}
		m := newTestManager(t, ManagerOpts{Store: store})

		if err := m.Add(foo); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		m.Wait()

		if m.Len() != 1 {
			t.Errorf("expected in-memory state to survive a failed save, got %d", m.Len())
		}
	})
}

func TestManagerSession(t *testing.T) {
	t.Run("Selectors Persist", func(t *testing.T) {
		prefs := newMemoryPrefs()
		m := newTestManager(t, ManagerOpts{Preferences: prefs})

		m.SetFilter(models.FilterUnwatched)
		m.SetSort(models.SortNextEpisode)
		m.SetGroup(models.GroupStatus)
		if got := m.ToggleTheme(); got != models.ThemeLight {
			t.Errorf("expected light theme, got %s", got)
		}

		for key, want := range map[string]string{
			repositories.PrefFilter: "unwatched",
			repositories.PrefSort:   "nextEpisode",
			repositories.PrefGroup:  "status",
			repositories.PrefTheme:  "light",
		} {
			if got := prefs.get(key); got != want {
				t.Errorf("%s: expected %s, got %s", key, want, got)
			}
		}
	})

	t.Run("View Applies Selectors", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{Store: &memoryStore{shows: tu.SampleShows()}})

		m.SetFilter(models.FilterUnwatched)
		m.SetSort(models.SortRating)
		view := m.View()
		if len(view) != 2 || view[0].Title != "Game of Thrones" || view[1].Title != "Westworld" {
			t.Errorf("unexpected view: %+v", view)
		}

		m.SetGroup(models.GroupStatus)
		groups := m.Groups()
		if len(groups) != 2 || groups[0].Key != "Ended" || groups[1].Key != "Running" {
			t.Errorf("unexpected groups: %+v", groups)
		}

		upcoming := m.Upcoming()
		if len(upcoming) != 1 || upcoming[0].Title != "Westworld" {
			t.Errorf("unexpected upcoming: %+v", upcoming)
		}
	})

	t.Run("Notification Last Write Wins", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})
		m.SetNotification("first")
		m.SetNotification("second")
		if m.Notification() != "second" {
			t.Errorf("expected second, got %q", m.Notification())
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("Short Query Skips Catalog", func(t *testing.T) {
		catalog := newMockCatalog()
		for _, q := range []string{"", "a", " b "} {
			if hits := Search(context.Background(), catalog, q, testLogger()); len(hits) != 0 {
				t.Errorf("%q: expected no hits, got %d", q, len(hits))
			}
		}
		if catalog.count("search") != 0 {
			t.Errorf("expected no catalog calls, got %d", catalog.count("search"))
		}
	})

	t.Run("Returns Hits", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.hits = []models.CatalogHit{{ID: 1, Title: "Foo"}}

		hits := Search(context.Background(), catalog, "fo", testLogger())
		if len(hits) != 1 {
			t.Errorf("expected 1 hit, got %d", len(hits))
		}
	})

	t.Run("Error Yields Empty", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.searchErr = shared.ErrTransport

		hits := Search(context.Background(), catalog, "foo", testLogger())
		if hits == nil || len(hits) != 0 {
			t.Errorf("expected empty non-nil hits, got %#v", hits)
		}
	})
}
