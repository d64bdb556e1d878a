package shows

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	fallbackGenre  = "Other"
	fallbackStatus = "Unknown"
)

// Group is one bucket of a grouped view.
type Group struct {
	Key   string
	Shows []models.TrackedShow
}

// Sorter orders derived views. The zero value is not usable; see [NewSorter].
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a Sorter collating titles for locale (a BCP 47 tag).
//
// Unknown or empty locales fall back to English.
func NewSorter(locale string) Sorter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	return Sorter{tag: tag}
}

// Filter returns the shows matching f. [models.FilterAll] returns a copy of the input.
func Filter(shows []models.TrackedShow, f models.Filter) []models.TrackedShow {
	out := make([]models.TrackedShow, 0, len(shows))
	for _, s := range shows {
		switch f {
		case models.FilterWatched:
			if !s.Watched {
				continue
			}
		case models.FilterUnwatched:
			if s.Watched {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// Sort returns a new slice ordered by mode. The sort is stable and never touches the input.
func (s Sorter) Sort(shows []models.TrackedShow, mode models.SortMode) []models.TrackedShow {
	out := slices.Clone(shows)

	switch mode {
	case models.SortAlphabetical:
		// collate.Collator is stateful, one per call
		c := collate.New(s.tag)
		slices.SortStableFunc(out, func(a, b models.TrackedShow) int {
			return c.CompareString(a.Title, b.Title)
		})
	case models.SortRating:
		slices.SortStableFunc(out, compareRating)
	case models.SortNextEpisode:
		slices.SortStableFunc(out, compareNextEpisode)
	}

	return out
}

// View filters then sorts, the order the list screen applies selectors in.
func (s Sorter) View(shows []models.TrackedShow, f models.Filter, mode models.SortMode) []models.TrackedShow {
	return s.Sort(Filter(shows, f), mode)
}

// Upcoming returns shows with a next-episode snapshot, soonest first, ignoring selectors.
func Upcoming(shows []models.TrackedShow) []models.TrackedShow {
	out := make([]models.TrackedShow, 0, len(shows))
	for _, s := range shows {
		if s.NextEpisode != nil {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, compareNextEpisode)
	return out
}

// GroupByGenre buckets shows by their first genre, "Other" when they have none.
func GroupByGenre(shows []models.TrackedShow) []Group {
	return groupBy(shows, func(s models.TrackedShow) string {
		if len(s.Genres) == 0 || s.Genres[0] == "" {
			return fallbackGenre
		}
		return s.Genres[0]
	})
}

// GroupByStatus buckets shows by status, "Unknown" when empty.
func GroupByStatus(shows []models.TrackedShow) []Group {
	return groupBy(shows, func(s models.TrackedShow) string {
		if s.Status == "" {
			return fallbackStatus
		}
		return s.Status
	})
}

// Grouped dispatches on g. [models.GroupNone] yields a single unnamed group.
func Grouped(shows []models.TrackedShow, g models.GroupBy) []Group {
	switch g {
	case models.GroupGenre:
		return GroupByGenre(shows)
	case models.GroupStatus:
		return GroupByStatus(shows)
	default:
		return []Group{{Shows: slices.Clone(shows)}}
	}
}

// Buckets appear in first-seen order; members keep their input order.
func groupBy(shows []models.TrackedShow, key func(models.TrackedShow) string) []Group {
	var groups []Group
	index := map[string]int{}

	for _, s := range shows {
		k := key(s)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Shows = append(groups[i].Shows, s)
	}
	return groups
}

// Countdown renders the whole days from now until airdate, rounded up.
//
// Non-positive differences render as "Today". Unparsable dates render as "".
func Countdown(airdate string, now time.Time) string {
	date, err := shared.ParseDate(airdate)
	if err != nil {
		return ""
	}

	days := int(math.Ceil(date.Sub(now).Hours() / 24))
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// Invalid ratings sort after every valid one.
func compareRating(a, b models.TrackedShow) int {
	switch {
	case a.Rating.Valid && !b.Rating.Valid:
		return -1
	case !a.Rating.Valid && b.Rating.Valid:
		return 1
	case !a.Rating.Valid && !b.Rating.Valid:
		return 0
	}
	switch {
	case a.Rating.Value > b.Rating.Value:
		return -1
	case a.Rating.Value < b.Rating.Value:
		return 1
	}
	return 0
}

// Shows without a snapshot sort last. YYYY-MM-DD compares correctly as a string.
func compareNextEpisode(a, b models.TrackedShow) int {
	switch {
	case a.NextEpisode == nil && b.NextEpisode == nil:
		return 0
	case a.NextEpisode == nil:
		return 1
	case b.NextEpisode == nil:
		return -1
	}
	switch {
	case a.NextEpisode.Airdate < b.NextEpisode.Airdate:
		return -1
	case a.NextEpisode.Airdate > b.NextEpisode.Airdate:
		return 1
	}
	return 0
}
