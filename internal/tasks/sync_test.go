package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	tu "github.com/desertthunder/tvtrack/internal/testing"
)

var ada = models.Identity{UID: "u-1", DisplayName: "Ada"}

func TestSetIdentity(t *testing.T) {
	t.Run("Remote Snapshot Replaces Local", func(t *testing.T) {
		store := &memoryStore{shows: []models.TrackedShow{{ID: 1, Title: "Local"}}}
		remote := tu.NewMockRemote()
		remote.Seed(ada.UID, tu.SampleShows())
		m := newTestManager(t, ManagerOpts{Store: store})

		var seen []models.Identity
		m.OnIdentityChange(func(id models.Identity) { seen = append(seen, id) })

		if err := m.SetIdentity(context.Background(), ada, remote); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		m.Wait()

		if m.Len() != 3 || m.Has("Local") {
			t.Errorf("expected remote shows to replace local, got %+v", m.Snapshot())
		}
		if stored, _ := store.snapshot(); len(stored) != 3 {
			t.Errorf("expected local store to follow, got %d", len(stored))
		}
		if len(seen) != 2 || seen[0].SignedIn() || seen[1] != ada {
			t.Errorf("expected signed-out replay then sign-in, got %+v", seen)
		}
	})

	t.Run("Late Observer Sees Current Identity", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})
		m.SetIdentity(context.Background(), ada, nil)

		var seen []models.Identity
		m.OnIdentityChange(func(id models.Identity) { seen = append(seen, id) })
		if len(seen) != 1 || seen[0] != ada {
			t.Errorf("expected immediate call with current identity, got %+v", seen)
		}

		m.SetIdentity(context.Background(), models.Identity{}, nil)
		if len(seen) != 2 || seen[1].SignedIn() {
			t.Errorf("expected sign-out to reach observer, got %+v", seen)
		}
	})

	t.Run("Missing Document Keeps Local", func(t *testing.T) {
		store := &memoryStore{shows: []models.TrackedShow{{ID: 1, Title: "Local"}}}
		m := newTestManager(t, ManagerOpts{Store: store})

		if err := m.SetIdentity(context.Background(), ada, tu.NewMockRemote()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !m.Has("Local") {
			t.Error("expected local shows to survive")
		}
	})

	t.Run("Mutations Mirror Remotely While Signed In", func(t *testing.T) {
		remote := tu.NewMockRemote()
		m := newTestManager(t, ManagerOpts{})
		m.SetIdentity(context.Background(), ada, remote)

		m.Add(models.TrackedShow{ID: 1, Title: "Foo"})
		m.Wait()

		stored, ok := remote.Stored(ada.UID)
		if !ok || len(stored) != 1 || stored[0].Title != "Foo" {
			t.Errorf("expected remote copy, got %+v", stored)
		}
	})

	t.Run("Sign Out Stops Remote Writes", func(t *testing.T) {
		remote := tu.NewMockRemote()
		m := newTestManager(t, ManagerOpts{})
		m.SetIdentity(context.Background(), ada, remote)
		m.SetIdentity(context.Background(), models.Identity{}, nil)

		m.Add(models.TrackedShow{ID: 1, Title: "Foo"})
		m.Wait()

		if remote.Writes != 0 {
			t.Errorf("expected no remote writes, got %d", remote.Writes)
		}
		if m.Len() != 1 {
			t.Errorf("expected local data untouched, got %d", m.Len())
		}
	})

	t.Run("Remote Read Failure", func(t *testing.T) {
		remote := tu.NewMockRemote()
		remote.ReadErr = shared.ErrTransport
		m := newTestManager(t, ManagerOpts{})

		err := m.SetIdentity(context.Background(), ada, remote)
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
		if !m.Identity().SignedIn() {
			t.Error("expected identity to stay set")
		}
	})
}

func TestPushPull(t *testing.T) {
	t.Run("Signed Out", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})

		if err := m.Push(context.Background(), nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("Push: expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := m.Pull(context.Background(), nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("Pull: expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("No Remote", func(t *testing.T) {
		m := newTestManager(t, ManagerOpts{})
		m.SetIdentity(context.Background(), ada, nil)

		if err := m.Push(context.Background(), nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Push Writes Snapshot", func(t *testing.T) {
		remote := tu.NewMockRemote()
		m := newTestManager(t, ManagerOpts{Store: &memoryStore{shows: tu.SampleShows()}})
		m.SetIdentity(context.Background(), ada, remote)
		m.Wait()

		remote.Seed(ada.UID, nil)
		if err := m.Push(context.Background(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stored, _ := remote.Stored(ada.UID); len(stored) != 3 {
			t.Errorf("expected 3 remote shows, got %d", len(stored))
		}
	})
}
