package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	"golang.org/x/oauth2"
)

// IdentityFunc resolves the signed-in user from the exchanged token.
type IdentityFunc func(token *oauth2.Token) (models.Identity, error)

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token    *oauth2.Token
	Identity models.Identity
	err      error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the Google sign-in callback for the authorization code flow.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	config      *oauth2.Config
	state       string
	identify    IdentityFunc
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler with the given OAuth2 config and state token.
// The state token should be cryptographically random for CSRF protection.
//
// identify may be nil, in which case the result carries only the token.
func NewOAuthHandler(config *oauth2.Config, state string, identify IdentityFunc) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		identify:   identify,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates the state parameter, exchanges the authorization code for tokens, resolves the identity
// and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	result := OAuthResult{Token: token}
	if h.identify != nil {
		identity, err := h.identify(token)
		if err != nil {
			h.Send(OAuthResult{err: err})
			http.Error(w, "Could not read account details", http.StatusInternalServerError)
			return
		}
		result.Identity = identity
	}

	h.Send(result)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	successPage.Execute(w, result.Identity)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// Await blocks until the callback completes, ctx is done or timeout elapses.
func (h *OAuthHandler) Await(ctx context.Context, timeout time.Duration) (OAuthResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-h.resultChan:
		if result.err != nil {
			return result, result.err
		}
		if result.Token == nil {
			return result, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
		}
		return result, nil
	case <-ctx.Done():
		return OAuthResult{}, ctx.Err()
	case <-timer.C:
		return OAuthResult{}, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	}
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Signed in to tvtrack</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #1e1e2e; }
        .container { text-align: center; background: #313244; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.3); }
        h1 { color: #a6e3a1; margin: 0 0 1rem 0; }
        p { color: #cdd6f4; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Signed in{{with .DisplayName}} as {{.}}{{end}}</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`))
