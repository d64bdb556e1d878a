// Package shows holds the show-list state model and the views derived from it.
//
// [List] is the canonical collection: insertion-ordered, unique by title, mutated only through
// Add, ToggleWatched, Delete, UpdateNote and Replace. It performs no I/O; persistence and
// notifications hang off the manager in the tasks package.
//
// Every other function here is a pure projection of a snapshot:
//   - [Filter] : all, watched or unwatched
//   - [Sorter.Sort] : alphabetical (locale collation), rating (descending), next episode (ascending)
//   - [Upcoming] : shows with a next-episode snapshot, soonest first
//   - [GroupByGenre], [GroupByStatus] : buckets in first-seen order
//   - [Countdown] : days until an air date, "Today" when due or past
//
// Derived views always return fresh slices, so the canonical order is never disturbed.
package shows
