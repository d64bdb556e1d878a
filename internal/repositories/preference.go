package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tvtrack/internal/shared"
)

// Preference keys
const (
	PrefTheme        = "theme"
	PrefFilter       = "filter"
	PrefSort         = "sort"
	PrefGroup        = "group"
	PrefNotification = "notification_permission"
)

// PreferenceRepository stores session selectors as key/value pairs.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the stored value for key, or fallback when it was never set.
func (r *PreferenceRepository) Get(key, fallback string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("%w: failed to read preference %s: %v", shared.ErrPersistence, key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *PreferenceRepository) Set(key, value string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("%w: failed to write preference %s: %v", shared.ErrPersistence, key, err)
	}
	return nil
}

// All returns every stored preference.
func (r *PreferenceRepository) All() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM preferences ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query preferences: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	prefs := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: failed to scan preference: %v", shared.ErrPersistence, err)
		}
		prefs[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrPersistence, err)
	}
	return prefs, nil
}
