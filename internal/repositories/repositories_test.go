package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	tu "github.com/desertthunder/tvtrack/internal/testing"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestShowRepository(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewShowRepository(db)
		shows, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list shows: %v", err)
		}
		if len(shows) != 0 {
			t.Errorf("expected no shows, got %d", len(shows))
		}

		revision, err := repo.Revision()
		if err != nil {
			t.Fatalf("failed to get revision: %v", err)
		}
		if revision != 0 {
			t.Errorf("expected revision 0, got %d", revision)
		}
	})

	t.Run("Save & List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewShowRepository(db)
		want := tu.SampleShows()

		revision, err := repo.Save(want)
		if err != nil {
			t.Fatalf("failed to save shows: %v", err)
		}
		if revision != 1 {
			t.Errorf("expected revision 1, got %d", revision)
		}

		got, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list shows: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d shows, got %d", len(want), len(got))
		}

		for i := range want {
			if got[i].Title != want[i].Title || got[i].ID != want[i].ID {
				t.Errorf("show %d: expected %s, got %s", i, want[i].Title, got[i].Title)
			}
			if got[i].Rating != want[i].Rating {
				t.Errorf("show %d: expected rating %v, got %v", i, want[i].Rating, got[i].Rating)
			}
			if got[i].Watched != want[i].Watched {
				t.Errorf("show %d: expected watched %v, got %v", i, want[i].Watched, got[i].Watched)
			}
			if got[i].Premiered != want[i].Premiered {
				t.Errorf("show %d: expected premiered %s, got %s", i, want[i].Premiered, got[i].Premiered)
			}
		}

		if got[2].NextEpisode == nil || got[2].NextEpisode.Airdate != "2099-01-01" {
			t.Errorf("expected next episode to round trip, got %+v", got[2].NextEpisode)
		}
		if got[1].NextEpisode != nil {
			t.Errorf("expected no next episode, got %+v", got[1].NextEpisode)
		}
		if got[2].Genres == nil {
			t.Error("expected empty genres to stay non-nil")
		}
	})

	t.Run("Save Replaces Snapshot", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewShowRepository(db)
		shows := tu.SampleShows()

		if _, err := repo.Save(shows); err != nil {
			t.Fatalf("failed to save shows: %v", err)
		}

		revision, err := repo.Save(shows[1:2])
		if err != nil {
			t.Fatalf("failed to save shows: %v", err)
		}
		if revision != 2 {
			t.Errorf("expected revision 2, got %d", revision)
		}

		got, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list shows: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Game of Thrones" {
			t.Errorf("expected only Game of Thrones, got %+v", got)
		}
	})

	t.Run("Save Empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewShowRepository(db)
		if _, err := repo.Save(tu.SampleShows()); err != nil {
			t.Fatalf("failed to save shows: %v", err)
		}
		if _, err := repo.Save(nil); err != nil {
			t.Fatalf("failed to save empty collection: %v", err)
		}

		got, _ := repo.List()
		if len(got) != 0 {
			t.Errorf("expected no shows, got %d", len(got))
		}
	})

	t.Run("Keeps Order", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewShowRepository(db)
		shows := []models.TrackedShow{{ID: 3, Title: "Zeta"}, {ID: 1, Title: "Alpha"}, {ID: 2, Title: "Mu"}}
		if _, err := repo.Save(shows); err != nil {
			t.Fatalf("failed to save shows: %v", err)
		}

		got, _ := repo.List()
		for i, title := range []string{"Zeta", "Alpha", "Mu"} {
			if got[i].Title != title {
				t.Errorf("position %d: expected %s, got %s", i, title, got[i].Title)
			}
		}
	})
}

func TestPreferenceRepository(t *testing.T) {
	t.Run("Get Fallback", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPreferenceRepository(db)
		value, err := repo.Get(PrefTheme, "dark")
		if err != nil {
			t.Fatalf("failed to get preference: %v", err)
		}
		if value != "dark" {
			t.Errorf("expected fallback 'dark', got %s", value)
		}
	})

	t.Run("Set & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPreferenceRepository(db)
		if err := repo.Set(PrefTheme, "light"); err != nil {
			t.Fatalf("failed to set preference: %v", err)
		}
		if err := repo.Set(PrefTheme, "dark"); err != nil {
			t.Fatalf("failed to overwrite preference: %v", err)
		}
		if err := repo.Set(PrefSort, "rating"); err != nil {
			t.Fatalf("failed to set preference: %v", err)
		}

		value, _ := repo.Get(PrefTheme, "")
		if value != "dark" {
			t.Errorf("expected 'dark', got %s", value)
		}

		all, err := repo.All()
		if err != nil {
			t.Fatalf("failed to list preferences: %v", err)
		}
		if len(all) != 2 || all[PrefSort] != "rating" {
			t.Errorf("unexpected preferences: %v", all)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	ada := models.Identity{UID: "u-1", DisplayName: "Ada", Email: "ada@example.com"}

	t.Run("Get Signed Out", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewSessionRepository(db).Get()
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Save & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		token := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: expiry}

		saved, err := repo.Save(ada, token)
		if err != nil {
			t.Fatalf("failed to save session: %v", err)
		}
		if saved.ID == "" {
			t.Error("expected session ID to be set")
		}

		got, err := repo.Get()
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Identity != ada {
			t.Errorf("expected %+v, got %+v", ada, got.Identity)
		}
		if got.Token.AccessToken != "at" || got.Token.RefreshToken != "rt" {
			t.Errorf("unexpected token: %+v", got.Token)
		}
		if !got.Token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, got.Token.Expiry)
		}
	})

	t.Run("Save Replaces Active Session", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if _, err := repo.Save(ada, nil); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}
		bob := models.Identity{UID: "u-2", DisplayName: "Bob"}
		if _, err := repo.Save(bob, nil); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}

		var active int
		if err := db.QueryRow("SELECT COUNT(*) FROM sessions WHERE deleted_at IS NULL").Scan(&active); err != nil {
			t.Fatalf("failed to count sessions: %v", err)
		}
		if active != 1 {
			t.Errorf("expected 1 active session, got %d", active)
		}

		got, _ := repo.Get()
		if got.Identity.UID != "u-2" {
			t.Errorf("expected u-2, got %s", got.Identity.UID)
		}
	})

	t.Run("UpdateToken", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if err := repo.UpdateToken(&oauth2.Token{AccessToken: "x"}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		repo.Save(ada, &oauth2.Token{AccessToken: "old"})
		if err := repo.UpdateToken(&oauth2.Token{AccessToken: "new"}); err != nil {
			t.Fatalf("failed to update token: %v", err)
		}

		got, _ := repo.Get()
		if got.Token.AccessToken != "new" {
			t.Errorf("expected refreshed token, got %s", got.Token.AccessToken)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		repo.Save(ada, nil)

		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear session: %v", err)
		}
		if _, err := repo.Get(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated after clear, got %v", err)
		}
		if err := repo.Clear(); err != nil {
			t.Errorf("expected clearing twice to be a no-op, got %v", err)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "shows")
		if err != nil {
			t.Fatalf("failed to get next sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	current, err := CurrentSequence(db, "shows")
	if err != nil {
		t.Fatalf("failed to get current sequence: %v", err)
	}
	if current != 3 {
		t.Errorf("expected current sequence 3, got %d", current)
	}
}
