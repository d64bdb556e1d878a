// package services defines clients for the external collaborators of the tracker
//
// TVMaze (catalog), Google (identity), Firestore (remote store)
package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/tvtrack/internal/models"
	"golang.org/x/oauth2"
)

// Catalog defines the read-only show catalog queried for search, add and notification sweeps.
type Catalog interface {
	// Search finds shows by free-text title. Hits carry best-effort fields with defaults applied.
	Search(ctx context.Context, query string) ([]models.CatalogHit, error)

	// SingleSearch resolves a title to the single best matching show.
	// Returns [shared.ErrNotFound] when the catalog has no match.
	SingleSearch(ctx context.Context, title string) (*CatalogShow, error)

	// Seasons lists the seasons of a show in catalog order.
	Seasons(ctx context.Context, showID int) ([]CatalogSeason, error)

	// Episodes lists the episodes of a show in catalog order.
	Episodes(ctx context.Context, showID int) ([]CatalogEpisode, error)
}

// RemoteStore defines the per-user document store the collection is mirrored to when signed in.
type RemoteStore interface {
	// Read returns the shows stored for uid. ok is false when the document or its shows field is absent.
	Read(ctx context.Context, uid string) (shows []models.TrackedShow, ok bool, err error)

	// Write merges the full collection into the document of uid, replacing its shows field.
	Write(ctx context.Context, uid string, shows []models.TrackedShow) error
}

// IdentityProvider performs the OAuth sign-in and resolves the signed-in identity.
type IdentityProvider interface {
	// AuthCodeURL returns the consent page URL for the given CSRF state.
	AuthCodeURL(state string) string

	// GetOAuthConfig exposes the OAuth2 configuration used by the callback handler.
	GetOAuthConfig() *oauth2.Config

	// Identity extracts the user behind token.
	Identity(token *oauth2.Token) (models.Identity, error)

	// Client returns an HTTP client authorized with token, refreshing it as needed.
	Client(ctx context.Context, token *oauth2.Token) *http.Client
}

// CatalogShow is the canonical show record from the catalog.
type CatalogShow struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Premiered    string        `json:"premiered"`
	OfficialSite string        `json:"officialSite"`
	Genres       []string      `json:"genres"`
	Summary      string        `json:"summary"`
	Rating       catalogRating `json:"rating"`
	Image        *catalogImage `json:"image"`
}

// CatalogSeason is a single season of a show.
type CatalogSeason struct {
	ID           int    `json:"id"`
	Number       int    `json:"number"`
	Name         string `json:"name"`
	PremiereDate string `json:"premiereDate"`
	EndDate      string `json:"endDate"`
}

// CatalogEpisode is a single episode of a show.
type CatalogEpisode struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Airdate string `json:"airdate"`
}

type catalogRating struct {
	Average *float64 `json:"average"`
}

type catalogImage struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

type searchResult struct {
	Score float64     `json:"score"`
	Show  CatalogShow `json:"show"`
}

// Hit converts a catalog show into a search hit, applying upstream defaults.
//
// Missing image and site become "", a missing or zero rating becomes "N/A", missing genres become empty.
func (s CatalogShow) Hit() models.CatalogHit {
	hit := models.CatalogHit{
		ID:      s.ID,
		Title:   s.Name,
		Genres:  s.Genres,
		Summary: s.Summary,
		Site:    s.OfficialSite,
	}
	if hit.Genres == nil {
		hit.Genres = []string{}
	}
	if s.Image != nil {
		hit.Image = s.Image.Medium
	}
	if s.Rating.Average != nil && *s.Rating.Average != 0 {
		hit.Rating = models.NewRating(*s.Rating.Average)
	}
	return hit
}
