package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/repositories"
	"github.com/desertthunder/tvtrack/internal/server"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin signs in with Google and loads the remote collection of the new identity.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.identity == nil {
		return fmt.Errorf("%w: set credentials.google.client_id and client_secret in %s", shared.ErrMissingCredentials, r.configPath)
	}

	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	identity, err := r.signIn(ctx, func(msg string) { r.writePlain("%s\n", msg) })
	if err != nil {
		return err
	}
	manager.Wait()

	r.writePlainln("✓ Signed in as %s", identity.DisplayName)
	r.writePlain("Tracking %d shows\n", manager.Len())
	return nil
}

// AuthLogout forgets the stored session. Local shows are kept.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.open(ctx)
	if err != nil {
		return err
	}

	if !manager.Identity().SignedIn() {
		return r.writePlain("Not signed in\n")
	}

	if err := r.signOut(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// signIn runs the OAuth flow, stores the session and switches the manager to the new identity.
//
// say receives lines meant for the user. A failed remote pull is reported through say
// and does not fail the sign-in.
func (r *Runner) signIn(ctx context.Context, say func(string)) (models.Identity, error) {
	if r.identity == nil {
		return models.Identity{}, fmt.Errorf("%w: set credentials.google.client_id and client_secret in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, identity, err := r.doOAuth(ctx, say)
	if err != nil {
		return models.Identity{}, err
	}

	if _, err := r.sessions.Save(identity, token); err != nil {
		return models.Identity{}, fmt.Errorf("failed to save session: %w", err)
	}

	remote, err := r.remoteStore(ctx, token)
	if err != nil {
		r.logger.Warn("remote store unavailable", "error", err)
	}

	if err := r.manager.SetIdentity(ctx, identity, remote); err != nil && !errors.Is(err, shared.ErrServiceUnavailable) {
		r.logger.Warn("failed to load remote shows", "error", err)
		say(fmt.Sprintf("⚠ Signed in, but remote shows could not be loaded: %v", err))
	}
	return identity, nil
}

// signOut clears the stored session and signs the manager out.
func (r *Runner) signOut(ctx context.Context) error {
	if err := r.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return r.manager.SetIdentity(ctx, models.Identity{}, nil)
}

// AuthStatus prints the stored session without contacting any service.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}

	session, err := r.sessions.Get()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("✗ Not signed in\n")
	}
	if err != nil {
		return err
	}

	r.writePlain("✓ Signed in as %s\n", session.Identity.DisplayName)
	if session.Identity.Email != "" {
		r.writePlain("Email: %s\n", session.Identity.Email)
	}
	r.writePlain("Since: %s\n", session.CreatedAt.Format(time.DateTime))

	switch {
	case session.Token.Valid():
		r.writePlain("Token: valid until %s\n", session.Token.Expiry.Format(time.DateTime))
	case session.Token.RefreshToken != "":
		r.writePlain("Token: expired, will refresh on next sync\n")
	default:
		r.writePlain("Token: expired, run 'tvtrack auth login'\n")
	}

	if r.config.Remote.ProjectID == "" {
		r.writePlain("Remote: not configured\n")
	} else {
		r.writePlain("Remote: %s\n", r.config.Remote.ProjectID)
	}
	return nil
}

// doOAuth runs the authorization code flow through a short-lived callback server.
func (r *Runner) doOAuth(ctx context.Context, say func(string)) (*oauth2.Token, models.Identity, error) {
	state := shared.GenerateState()

	oauthHandler := server.NewOAuthHandler(r.identity.GetOAuthConfig(), state, r.identity.Identity)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(oauthHandler)

	srv, err := server.Listen(r.config.Server.Addr(), router, r.logger)
	if err != nil {
		return nil, models.Identity{}, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	srv.Serve()
	defer func() {
		if err := srv.Shutdown(5 * time.Second); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := r.identity.AuthCodeURL(state)
	say(fmt.Sprintf("→ Waiting for Google sign-in in your browser (%v timeout)...", r.authTimeout))
	if err := r.openURL(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		say("⚠ Could not open browser automatically. Please open this URL in your browser: " + authURL)
	}

	waitCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		select {
		case err := <-srv.Errors():
			cancel(err)
		case <-waitCtx.Done():
		}
	}()

	result, err := oauthHandler.Await(waitCtx, r.authTimeout)
	if err != nil {
		if cause := context.Cause(waitCtx); ctx.Err() == nil && cause != nil && !errors.Is(cause, context.Canceled) {
			return nil, models.Identity{}, fmt.Errorf("server error: %w", cause)
		}
		return nil, models.Identity{}, fmt.Errorf("authorization failed: %w", err)
	}

	return result.Token, result.Identity, nil
}

// remoteStore builds the Firestore store for token. Returns nil when no project is configured.
func (r *Runner) remoteStore(ctx context.Context, token *oauth2.Token) (services.RemoteStore, error) {
	if r.remote != nil {
		return r.remote, nil
	}
	if r.config.Remote.ProjectID == "" {
		return nil, nil
	}
	if r.identity == nil {
		return nil, fmt.Errorf("%w: google credentials are required for the remote store", shared.ErrMissingCredentials)
	}

	source := newSessionTokenSource(r.identity.TokenSource(ctx, token), token, r.sessions, r.logger)
	store, err := services.NewFirestoreStore(r.config.Remote, oauth2.NewClient(ctx, source))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// sessionTokenSource stores every refreshed token on the active session.
type sessionTokenSource struct {
	base     oauth2.TokenSource
	sessions *repositories.SessionRepository
	logger   *log.Logger

	mu   sync.Mutex
	last string
}

func newSessionTokenSource(base oauth2.TokenSource, token *oauth2.Token, sessions *repositories.SessionRepository, logger *log.Logger) oauth2.TokenSource {
	source := &sessionTokenSource{base: base, sessions: sessions, logger: logger}
	if token != nil {
		source.last = token.AccessToken
	}
	return oauth2.ReuseTokenSource(token, source)
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := s.sessions.UpdateToken(token); err != nil {
			s.logger.Warn("failed to store refreshed token", "error", err)
		} else {
			s.logger.Debug("stored refreshed token", "expiry", token.Expiry)
		}
	}
	return token, nil
}
