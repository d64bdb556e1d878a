package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
)

// ShowRepository persists the canonical collection as a full snapshot.
type ShowRepository struct {
	db *sql.DB
}

// NewShowRepository creates a new [ShowRepository] with the given database connection
func NewShowRepository(db *sql.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

// Save replaces the stored collection with shows and returns the new revision.
//
// The replace happens in one transaction so a reader never sees a partial snapshot.
func (r *ShowRepository) Save(shows []models.TrackedShow) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM shows"); err != nil {
		return 0, fmt.Errorf("%w: failed to clear shows: %v", shared.ErrPersistence, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO shows (
			position, show_id, title, image, rating, genres, summary, site, status,
			premiered, season_count, next_episode, watched, notes, saved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prepare insert: %v", shared.ErrPersistence, err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, show := range shows {
		genres, nextEpisode, err := encodeColumns(show)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}

		var rating sql.NullFloat64
		if show.Rating.Valid {
			rating = sql.NullFloat64{Float64: show.Rating.Value, Valid: true}
		}

		_, err = stmt.Exec(
			i, show.ID, show.Title, show.Image, rating, genres, show.Summary, show.Site, show.Status,
			string(show.Premiered), show.SeasonCount, nextEpisode, show.Watched, show.Notes, now,
		)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to insert show %q: %v", shared.ErrPersistence, show.Title, err)
		}
	}

	revision, err := nextSequence(tx, "shows")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit snapshot: %v", shared.ErrPersistence, err)
	}

	return revision, nil
}

// List returns the stored collection in canonical order.
func (r *ShowRepository) List() ([]models.TrackedShow, error) {
	query := `
		SELECT show_id, title, image, rating, genres, summary, site, status,
			premiered, season_count, next_episode, watched, notes
		FROM shows
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query shows: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	shows := []models.TrackedShow{}
	for rows.Next() {
		var (
			show        models.TrackedShow
			rating      sql.NullFloat64
			genres      string
			premiered   string
			nextEpisode sql.NullString
		)

		err := rows.Scan(
			&show.ID, &show.Title, &show.Image, &rating, &genres, &show.Summary, &show.Site, &show.Status,
			&premiered, &show.SeasonCount, &nextEpisode, &show.Watched, &show.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan show: %v", shared.ErrPersistence, err)
		}

		if rating.Valid {
			show.Rating = models.NewRating(rating.Float64)
		}
		show.Premiered = models.Year(premiered)

		if err := json.Unmarshal([]byte(genres), &show.Genres); err != nil {
			return nil, fmt.Errorf("%w: bad genres for %q: %v", shared.ErrPersistence, show.Title, err)
		}
		if show.Genres == nil {
			show.Genres = []string{}
		}

		if nextEpisode.Valid && nextEpisode.String != "" {
			var ep models.EpisodeSnapshot
			if err := json.Unmarshal([]byte(nextEpisode.String), &ep); err != nil {
				return nil, fmt.Errorf("%w: bad next episode for %q: %v", shared.ErrPersistence, show.Title, err)
			}
			show.NextEpisode = &ep
		}

		shows = append(shows, show)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrPersistence, err)
	}

	return shows, nil
}

// Revision returns the revision of the last saved snapshot; 0 means never saved.
func (r *ShowRepository) Revision() (int, error) {
	revision, err := CurrentSequence(r.db, "shows")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	return revision, nil
}

func encodeColumns(show models.TrackedShow) (string, sql.NullString, error) {
	genres := show.Genres
	if genres == nil {
		genres = []string{}
	}

	g, err := json.Marshal(genres)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("failed to encode genres: %w", err)
	}

	if show.NextEpisode == nil {
		return string(g), sql.NullString{}, nil
	}

	ep, err := json.Marshal(show.NextEpisode)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("failed to encode next episode: %w", err)
	}
	return string(g), sql.NullString{String: string(ep), Valid: true}, nil
}
