// Google OAuth2 implementation of [IdentityProvider]
//
// Scopes and endpoints per https://developers.google.com/identity/protocols/oauth2/web-server
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// datastoreScope authorizes Firestore REST calls on behalf of the user.
	datastoreScope = "https://www.googleapis.com/auth/datastore"
)

// GoogleIdentity implements [IdentityProvider] for "Sign in with Google".
type GoogleIdentity struct {
	config *oauth2.Config
}

// NewGoogleIdentity creates a Google identity provider with the given OAuth2 credentials.
func NewGoogleIdentity(credentials map[string]string) (*GoogleIdentity, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"openid", "email", "profile", datastoreScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}

	return &GoogleIdentity{config: config}, nil
}

// GetOAuthConfig returns the OAuth2 configuration.
func (g *GoogleIdentity) GetOAuthConfig() *oauth2.Config {
	return g.config
}

// AuthCodeURL returns the consent page URL. Offline access is requested so sessions survive restarts.
func (g *GoogleIdentity) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Client returns an [http.Client] that attaches token and refreshes it when it expires.
func (g *GoogleIdentity) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	return g.config.Client(ctx, token)
}

// TokenSource returns a source that refreshes token through Google's token endpoint.
func (g *GoogleIdentity) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return g.config.TokenSource(ctx, token)
}

// Identity reads the user from the id_token returned alongside token.
//
// The id_token is received directly from Google's token endpoint over TLS, so its signature is not re-verified.
func (g *GoogleIdentity) Identity(token *oauth2.Token) (models.Identity, error) {
	if token == nil {
		return models.Identity{}, fmt.Errorf("%w: no token", shared.ErrNotAuthenticated)
	}

	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return models.Identity{}, fmt.Errorf("%w: token response has no id_token", shared.ErrAuthFailed)
	}

	return IdentityFromIDToken(raw)
}

// IdentityFromIDToken extracts sub, name and email claims from an OpenID Connect id_token.
func IdentityFromIDToken(raw string) (models.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return models.Identity{}, fmt.Errorf("%w: malformed id_token: %v", shared.ErrAuthFailed, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return models.Identity{}, fmt.Errorf("%w: id_token has no subject", shared.ErrAuthFailed)
	}

	identity := models.Identity{UID: sub}
	if name, ok := claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if identity.DisplayName == "" {
		identity.DisplayName = identity.Email
	}

	return identity, nil
}
