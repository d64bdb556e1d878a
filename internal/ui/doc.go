// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a single screen over the tracked collection with four states:
//  1. [ListView] : Browse the derived view with the selected show's card beside it
//  2. [SearchView] : Query the catalog and add a result
//  3. [NoteView] : Edit the notes of a show
//  4. [ConfirmView] : Confirm deleting a show
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// All state lives in the [tasks.Manager]; the model only re-reads its derived views after each mutation.
//
// On start the episode and season sweeps run once. Alerts arrive through the sweeper's channel and
// replace the single notification banner; add failures are reported there too. Adding a show streams
// [tasks.ProgressUpdate] values next to a spinner.
//
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
// Filter, sort, group and theme keys cycle the session selectors, which the manager persists.
package ui
