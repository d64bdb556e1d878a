// Package models defines the domain entities of the show tracker.
//
// The package contains two categories of types:
//
// 1. Collection entries: the data that is persisted locally and remotely
//   - [TrackedShow] : A show the user added, with personal annotations (watched, notes)
//   - [EpisodeSnapshot] : The next episode captured when the show was added
//   - [Rating] : A numeric rating or "N/A", encoded the same way on both stores
//
// 2. Session values: selections that shape derived views but are not domain data
//   - [Filter], [SortMode], [GroupBy] : View selectors with Parse* helpers and a Next cycle for the TUI
//   - [Theme] : Dark or light palette
//   - [Identity] : The signed-in user, zero when signed out
//
// [CatalogHit] sits between the two: a search result from the catalog that becomes a [TrackedShow] once added.
package models
