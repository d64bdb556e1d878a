// Package server provides HTTP routing, middleware, and the OAuth callback used by Google sign-in.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [LoggingMiddleware] records each request through charmbracelet/log without the query string.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// resolves the signed-in identity and sends the result through a channel. [OAuthHandler.Await] waits for
// that result with a deadline.
//
// It only processes one callback to prevent replay attacks.
//
// # Callback Server
//
// When the user runs `tvtrack auth login`, a [CallbackServer] binds the configured address
// (localhost:3000 by default), serves the callback, and shuts down after the token arrives.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
