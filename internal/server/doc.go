// Package server provides HTTP routing, middleware, and OAuth callback handling for the CLI and web app.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Any func(http.Handler) http.Handler fits, so chi's middleware package plugs in directly; see [DefaultMiddleware].
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so paths may carry wildcards
// such as "/delete_comment/{id}".
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback for the CLI login.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for a
// token bundle, and sends the result through a channel. It only processes one callback to prevent replay attacks.
//
// The web app (internal/web) registers its own session-backed login and callback handlers on the same router.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
