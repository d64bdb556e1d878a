package shows

import (
	"testing"

	"github.com/desertthunder/tvtrack/internal/models"
)

func titles(shows []models.TrackedShow) []string {
	out := make([]string, len(shows))
	for i, s := range shows {
		out[i] = s.Title
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestList(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		t.Run("appends unwatched with empty notes", func(t *testing.T) {
			l := NewList(nil)
			if !l.Add(models.TrackedShow{ID: 1, Title: "Foo", Watched: true, Notes: "carried over"}) {
				t.Fatal("expected add to succeed")
			}

			got, ok := l.Find(1)
			if !ok {
				t.Fatal("expected show to be found")
			}
			if got.Watched || got.Notes != "" {
				t.Errorf("expected fresh annotations, got watched=%v notes=%q", got.Watched, got.Notes)
			}
			if got.Genres == nil {
				t.Error("expected genres to be non-nil")
			}
		})

		t.Run("rejects duplicate title", func(t *testing.T) {
			l := NewList(nil)
			l.Add(models.TrackedShow{ID: 1, Title: "Foo"})
			before := l.Snapshot()

			if l.Add(models.TrackedShow{ID: 2, Title: "Foo"}) {
				t.Error("expected duplicate title to be rejected")
			}
			if l.Len() != 1 {
				t.Errorf("expected exactly one entry, got %d", l.Len())
			}
			if after := l.Snapshot(); after[0].ID != before[0].ID {
				t.Errorf("collection changed on rejected add")
			}
		})

		t.Run("title match is case-sensitive", func(t *testing.T) {
			l := NewList(nil)
			l.Add(models.TrackedShow{ID: 1, Title: "Foo"})
			if !l.Add(models.TrackedShow{ID: 2, Title: "foo"}) {
				t.Error("expected different-case title to be accepted")
			}
		})

		t.Run("id collisions are not checked", func(t *testing.T) {
			l := NewList(nil)
			l.Add(models.TrackedShow{ID: 7, Title: "Foo"})
			if !l.Add(models.TrackedShow{ID: 7, Title: "Bar"}) {
				t.Error("expected same id with different title to be accepted")
			}
		})

		t.Run("preserves insertion order", func(t *testing.T) {
			l := NewList(nil)
			for i, title := range []string{"C", "A", "B"} {
				l.Add(models.TrackedShow{ID: i + 1, Title: title})
			}
			if got := titles(l.Snapshot()); !equal(got, []string{"C", "A", "B"}) {
				t.Errorf("expected insertion order, got %v", got)
			}
		})
	})

	t.Run("ToggleWatched", func(t *testing.T) {
		l := NewList([]models.TrackedShow{{ID: 1, Title: "Foo"}, {ID: 2, Title: "Bar", Watched: true}})

		for _, id := range []int{1, 2} {
			orig, _ := l.Find(id)
			l.ToggleWatched(id)
			l.ToggleWatched(id)
			got, _ := l.Find(id)
			if got.Watched != orig.Watched {
				t.Errorf("toggle twice should be identity for id %d", id)
			}
		}

		if !l.ToggleWatched(1) {
			t.Error("expected toggle to report success")
		}
		if got, _ := l.Find(1); !got.Watched {
			t.Error("expected show 1 to be watched")
		}

		if l.ToggleWatched(99) {
			t.Error("expected toggle on absent id to be a no-op")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		l := NewList([]models.TrackedShow{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}, {ID: 3, Title: "C"}})

		if !l.Delete(2) {
			t.Fatal("expected delete to succeed")
		}
		if got := titles(l.Snapshot()); !equal(got, []string{"A", "C"}) {
			t.Errorf("expected [A C], got %v", got)
		}
		if l.Delete(2) {
			t.Error("expected second delete to be a no-op")
		}
	})

	t.Run("UpdateNote", func(t *testing.T) {
		l := NewList([]models.TrackedShow{{ID: 1, Title: "A"}})
		long := string(make([]byte, 10000))

		if !l.UpdateNote(1, "  spaced\nmultiline  ") {
			t.Fatal("expected update to succeed")
		}
		if got, _ := l.Find(1); got.Notes != "  spaced\nmultiline  " {
			t.Errorf("expected notes verbatim, got %q", got.Notes)
		}

		l.UpdateNote(1, long)
		if got, _ := l.Find(1); len(got.Notes) != len(long) {
			t.Errorf("expected unbounded notes, got %d bytes", len(got.Notes))
		}

		if l.UpdateNote(42, "x") {
			t.Error("expected update on absent id to be a no-op")
		}
	})

	t.Run("Snapshot is isolated", func(t *testing.T) {
		l := NewList([]models.TrackedShow{{ID: 1, Title: "A", Genres: []string{"Drama"}}})
		snap := l.Snapshot()
		snap[0].Title = "changed"
		snap[0].Genres[0] = "changed"

		got, _ := l.Find(1)
		if got.Title != "A" || got.Genres[0] != "Drama" {
			t.Errorf("snapshot mutation leaked into list: %+v", got)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		l := NewList([]models.TrackedShow{{ID: 1, Title: "A"}})
		l.Replace([]models.TrackedShow{{ID: 5, Title: "E"}, {ID: 6, Title: "F"}})
		if got := titles(l.Snapshot()); !equal(got, []string{"E", "F"}) {
			t.Errorf("expected replaced collection, got %v", got)
		}
	})
}
