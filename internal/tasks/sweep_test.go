package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/services"
	tu "github.com/desertthunder/tvtrack/internal/testing"
)

const today = "2025-06-15"

func sweepCatalog() *mockCatalog {
	c := newMockCatalog()
	c.episodes[1] = []services.CatalogEpisode{
		{ID: 10, Name: "Yesterday", Airdate: "2025-06-14"},
		{ID: 11, Name: "Pilot", Airdate: today},
	}
	c.episodes[2] = []services.CatalogEpisode{{ID: 20, Name: "Old", Airdate: "2020-01-01"}}
	c.episodesErr[3] = errors.New("boom")
	c.episodes[4] = []services.CatalogEpisode{{ID: 40, Name: "Finale", Airdate: today}}

	c.seasons[1] = []services.CatalogSeason{{Number: 1, PremiereDate: "2020-01-01"}, {Number: 2, PremiereDate: ""}, {Number: 3, PremiereDate: "2025-09-01"}, {Number: 4, PremiereDate: "2026-09-01"}}
	c.seasons[2] = []services.CatalogSeason{{Number: 1, PremiereDate: today}}
	return c
}

func sweepShows() []models.TrackedShow {
	return []models.TrackedShow{
		{ID: 1, Title: "Foo", Image: "/tmp/foo.png"},
		{ID: 2, Title: "Bar"},
		{ID: 3, Title: "Broken"},
		{ID: 0, Title: "No ID"},
		{ID: 4, Title: "Baz"},
	}
}

func TestSweeperEpisodes(t *testing.T) {
	t.Run("Finds Episodes Airing Today", func(t *testing.T) {
		notifier := &tu.MockNotifier{}
		s := NewSweeper(SweeperOpts{Catalog: sweepCatalog(), Notifier: notifier, Logger: testLogger()})

		alerts := s.Episodes(context.Background(), sweepShows(), today)
		if len(alerts) != 2 {
			t.Fatalf("expected 2 alerts, got %+v", alerts)
		}

		want := "📺 New episode of \"Foo\" airs today: \"Pilot\""
		if alerts[0].Message != want {
			t.Errorf("expected %q, got %q", want, alerts[0].Message)
		}
		if alerts[0].Kind != EpisodeToday || alerts[1].Title != "Baz" {
			t.Errorf("unexpected alerts: %+v", alerts)
		}

		sent := notifier.Notifications()
		if len(sent) != 2 {
			t.Fatalf("expected 2 desktop notifications, got %d", len(sent))
		}
		for _, n := range sent {
			if n.Title != EpisodeAlertTitle {
				t.Errorf("expected title %q, got %q", EpisodeAlertTitle, n.Title)
			}
			if n.Body == want && n.Icon != "/tmp/foo.png" {
				t.Errorf("expected show image as icon, got %q", n.Icon)
			}
		}
	})

	t.Run("Skips Shows Without ID", func(t *testing.T) {
		catalog := sweepCatalog()
		s := NewSweeper(SweeperOpts{Catalog: catalog, Logger: testLogger()})

		s.Episodes(context.Background(), []models.TrackedShow{{Title: "No ID"}}, today)
		if catalog.count("episodes") != 0 {
			t.Errorf("expected no lookups, got %d", catalog.count("episodes"))
		}
	})

	t.Run("Publishes To Channel Without Blocking", func(t *testing.T) {
		s := NewSweeper(SweeperOpts{Catalog: sweepCatalog(), Logger: testLogger(), Buffer: 1})

		s.Episodes(context.Background(), sweepShows(), today)

		select {
		case a := <-s.Alerts():
			if a.Kind != EpisodeToday {
				t.Errorf("unexpected alert: %+v", a)
			}
		default:
			t.Fatal("expected an alert on the channel")
		}
		select {
		case a := <-s.Alerts():
			t.Errorf("expected second alert to be dropped, got %+v", a)
		default:
		}
	})

	t.Run("Calls Alert Handlers", func(t *testing.T) {
		s := NewSweeper(SweeperOpts{Catalog: sweepCatalog(), Logger: testLogger()})

		var mu sync.Mutex
		var titles []string
		s.OnAlert(func(a Alert) {
			mu.Lock()
			defer mu.Unlock()
			titles = append(titles, a.Title)
		})

		s.Episodes(context.Background(), sweepShows(), today)

		mu.Lock()
		defer mu.Unlock()
		if len(titles) != 2 {
			t.Errorf("expected handler to see 2 alerts, got %v", titles)
		}
	})

	t.Run("Desktop Failure Is Not Fatal", func(t *testing.T) {
		notifier := &tu.MockNotifier{SendErr: errors.New("no display")}
		s := NewSweeper(SweeperOpts{Catalog: sweepCatalog(), Notifier: notifier, Logger: testLogger()})

		if alerts := s.Episodes(context.Background(), sweepShows(), today); len(alerts) != 2 {
			t.Errorf("expected 2 alerts, got %d", len(alerts))
		}
	})
}

func TestSweeperSeasons(t *testing.T) {
	s := NewSweeper(SweeperOpts{Catalog: sweepCatalog(), Logger: testLogger()})

	alerts := s.Seasons(context.Background(), sweepShows(), today)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %+v", alerts)
	}

	want := "📢 New season of \"Foo\" premieres on 2025-09-01!"
	if alerts[0].Message != want {
		t.Errorf("expected %q, got %q", want, alerts[0].Message)
	}
	if alerts[0].Kind != SeasonPremiere || alerts[0].Subject != "Season 3" {
		t.Errorf("unexpected alert: %+v", alerts[0])
	}
}

func TestManagerSweepOnChange(t *testing.T) {
	s := NewSweeper(SweeperOpts{Catalog: sweepCatalog(), Logger: testLogger()})
	m := newTestManager(t, ManagerOpts{Sweeper: s})

	m.Add(models.TrackedShow{ID: 1, Title: "Foo"})
	m.Wait()

	want := "📺 New episode of \"Foo\" airs today: \"Pilot\""
	if m.Notification() != want {
		t.Errorf("expected %q, got %q", want, m.Notification())
	}
}
