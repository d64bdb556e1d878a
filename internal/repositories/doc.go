// Package repositories implements SQLite persistence for the tracker.
//
// Key Implementations:
//   - [ShowRepository] : full-snapshot storage of the canonical collection
//   - [PreferenceRepository] : theme, filter, sort, grouping and notification permission
//   - [SessionRepository] : the signed-in identity and its OAuth token
//
// The collection is always written whole. Each [ShowRepository.Save] replaces every row inside one
// transaction and bumps the shows revision counter kept in the shows_sequence table, so the
// revision tells how many snapshots have been written. [NextSequence] increments such a counter.
//
// Sessions are soft deleted: signing out sets deleted_at, and queries only see the active row.
//
// All errors wrap [shared.ErrPersistence].
package repositories
