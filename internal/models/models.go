// package models defines the data model for the show tracker
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// NotAvailable is the placeholder the catalog data uses for missing ratings and premiere years.
const NotAvailable = "N/A"

// TrackedShow is one entry of the canonical collection.
//
// JSON keys match the document stored remotely so local and remote snapshots are interchangeable.
type TrackedShow struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Image       string           `json:"image"`
	Rating      Rating           `json:"rating"`
	Genres      []string         `json:"genres"`
	Summary     string           `json:"summary"`
	Site        string           `json:"site"`
	Status      string           `json:"status"`
	Premiered   Year             `json:"premiered"`
	SeasonCount int              `json:"seasons"`
	NextEpisode *EpisodeSnapshot `json:"nextEpisode"`
	Watched     bool             `json:"watched"`
	Notes       string           `json:"notes"`
}

// Clone returns a deep copy of s.
func (s TrackedShow) Clone() TrackedShow {
	c := s
	c.Genres = slices.Clone(s.Genres)
	if s.NextEpisode != nil {
		ep := *s.NextEpisode
		c.NextEpisode = &ep
	}
	return c
}

// EpisodeSnapshot is the next episode as known when the show was added. It is never refreshed.
type EpisodeSnapshot struct {
	ID      int    `json:"id,omitempty"`
	Name    string `json:"name"`
	Season  int    `json:"season,omitempty"`
	Number  int    `json:"number,omitempty"`
	Airdate string `json:"airdate"` // YYYY-MM-DD
}

// CatalogHit is a single search result with upstream defaults already applied.
type CatalogHit struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Image   string   `json:"image"`
	Rating  Rating   `json:"rating"`
	Genres  []string `json:"genres"`
	Summary string   `json:"summary"`
	Site    string   `json:"site"`
}

// Rating is a catalog rating that is either a number or "N/A".
type Rating struct {
	Value float64
	Valid bool
}

// NewRating returns a valid [Rating].
func NewRating(v float64) Rating {
	return Rating{Value: v, Valid: true}
}

// String renders the rating the way it is displayed on show cards.
func (r Rating) String() string {
	if !r.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON encodes a valid rating as a number and an invalid one as "N/A".
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts numbers, numeric strings, null and "N/A".
func (r *Rating) UnmarshalJSON(data []byte) error {
	*r = Rating{}

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*r = NewRating(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid rating %s", data)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*r = NewRating(f)
	}
	return nil
}

// Year is a premiere year or "N/A". Documents written by older clients store the year as a number.
type Year string

// UnmarshalJSON accepts a string, a number or null.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = NotAvailable
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*y = Year(n.String())
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid year %s", data)
	}
	*y = Year(s)
	return nil
}

// Identity is the signed-in user. The zero value means signed out.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// SignedIn reports whether the identity refers to a user.
func (i Identity) SignedIn() bool {
	return i.UID != ""
}
