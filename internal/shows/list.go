package shows

import (
	"slices"

	"github.com/desertthunder/tvtrack/internal/models"
)

// List is the canonical collection of tracked shows in insertion order.
//
// List is not safe for concurrent use; callers that share one guard it themselves.
type List struct {
	shows []models.TrackedShow
}

// NewList returns a List holding a copy of shows.
func NewList(shows []models.TrackedShow) *List {
	l := &List{}
	l.Replace(shows)
	return l
}

// Len returns the number of tracked shows.
func (l *List) Len() int {
	return len(l.shows)
}

// Add appends show unless an entry with the same title exists.
//
// The comparison is exact and case-sensitive. Catalog ids are not checked.
// Added shows start unwatched with empty notes.
func (l *List) Add(show models.TrackedShow) bool {
	if l.HasTitle(show.Title) {
		return false
	}

	show = show.Clone()
	show.Watched = false
	show.Notes = ""
	if show.Genres == nil {
		show.Genres = []string{}
	}

	l.shows = append(l.shows, show)
	return true
}

// HasTitle reports whether a show titled exactly title is tracked.
func (l *List) HasTitle(title string) bool {
	return slices.ContainsFunc(l.shows, func(s models.TrackedShow) bool { return s.Title == title })
}

// ToggleWatched flips the watched flag of the show with id.
func (l *List) ToggleWatched(id int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.shows[i].Watched = !l.shows[i].Watched
	return true
}

// Delete removes the show with id.
func (l *List) Delete(id int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.shows = slices.Delete(l.shows, i, i+1)
	return true
}

// UpdateNote replaces the notes of the show with id verbatim.
func (l *List) UpdateNote(id int, text string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.shows[i].Notes = text
	return true
}

// Find returns a copy of the show with id.
func (l *List) Find(id int) (models.TrackedShow, bool) {
	i := l.index(id)
	if i < 0 {
		return models.TrackedShow{}, false
	}
	return l.shows[i].Clone(), true
}

// Replace swaps the whole collection for a copy of shows.
func (l *List) Replace(shows []models.TrackedShow) {
	l.shows = cloneAll(shows)
}

// Snapshot returns a deep copy of the collection in canonical order.
func (l *List) Snapshot() []models.TrackedShow {
	return cloneAll(l.shows)
}

// index returns the position of the first show with id, or -1.
func (l *List) index(id int) int {
	return slices.IndexFunc(l.shows, func(s models.TrackedShow) bool { return s.ID == id })
}

func cloneAll(shows []models.TrackedShow) []models.TrackedShow {
	out := make([]models.TrackedShow, len(shows))
	for i, s := range shows {
		out[i] = s.Clone()
	}
	return out
}
