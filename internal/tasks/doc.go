// Package tasks orchestrates the tracked collection and every operation that reaches beyond it.
//
// # Manager
//
// [Manager] owns the canonical collection (a [shows.List]) together with session state: the
// signed-in identity, theme, filter, sort mode, grouping and the single active notification.
//
// Mutations ([Manager.Add], [Manager.ToggleWatched], [Manager.Delete], [Manager.UpdateNote],
// [Manager.Replace]) apply synchronously under a mutex. Each successful mutation bumps a
// generation counter and hands a snapshot to every registered [Observer] on its own goroutine:
//
//  1. local persistence : full snapshot written through [ShowStore]
//  2. remote persistence : full snapshot merged into the user's document while signed in
//  3. episode sweep : [Sweeper.Episodes] when a sweeper is configured
//
// Persistence failures are logged and never roll back the in-memory state. Snapshots older than
// the last written generation are skipped, so the stored copy always converges on the latest
// mutation. Call [Manager.Wait] before exiting to flush in-flight observers.
//
// # Catalog
//
// [Search] never fails: short queries and catalog errors yield an empty result.
// [Manager.AddFromHit] resolves a search hit with a single-search, fetches seasons and episodes
// concurrently and tracks the combined record. Progress is reported through a [ProgressUpdate]
// channel with non-blocking sends.
//
// # Sync
//
// [Manager.SetIdentity] switches users. On sign-in the remote snapshot replaces the local
// collection when the document has one. [Manager.Pull] and [Manager.Push] force a transfer.
//
// # Notifications
//
// [Sweeper] looks up each tracked show independently (bounded by an errgroup limit) and emits an
// [Alert] for an episode airing today or a season premiering later. Alerts go to a buffered
// channel without blocking and to [Sweeper.OnAlert] handlers; the manager's handler overwrites
// its active notification, so the last alert wins.
//
// [Scheduler] runs the sweeps on a cron schedule for watch mode.
package tasks
