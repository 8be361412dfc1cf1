// Package web implements the HTMX-based dashboard over the account operations in internal/tasks.
//
// # Architecture
//
// Pages are server-rendered with html/template. The dashboard loads each collection as a partial with hx-get,
// and the selection forms post back with hx-post and swap the re-listed partial in place. A page requested
// without the HX-Request header is wrapped in the layout, so every route also works as a plain link.
//
// Routes
//
//	GET  /                          → landing page
//	GET  /login                     → store OAuth state, redirect to Google consent
//	GET  /authorized                → verify state, exchange code, store token bundle
//	GET  /logout                    → clear token bundle
//	GET  /dashboard                 → layout with collection tabs (requires auth)
//	GET  /my_videos, /my_comments   → partials (requires auth)
//	GET  /my_likes, /my_saved       → partials (requires auth)
//	GET  /delete_comment/{id}       → delete one comment, back to /my_comments
//	POST /delete_selected_comments  → bulk delete, re-list
//	POST /delete_selected_likes     → bulk unlike, re-list
//	POST /delete_selected_saved     → hide playlists from the view, re-list
//	GET  /upload_video              → upload form
//	POST /upload_video              → multipart upload, flash the outcome
//	GET  /healthz                   → liveness JSON
//
// # State Management
//
// The only state is the browser session, held by [TokenHolder]: the token bundle, the pending OAuth state,
// and flash messages. Sessions live either in an encrypted cookie or in the sessions table through [SQLiteStore].
//
// Each protected request builds a fresh client from the bundle ([App.RequireAuth]). If the client refreshed
// the access token during the request, the new token is written back to the session before the response
// header is sent.
//
// # Errors
//
// Listings render whatever was gathered with a warning banner. Authentication failures clear the
// session and redirect to /login (via HX-Redirect for HTMX requests). Single and bulk mutations log
// failures and report them in a notice or flash message without stopping.
package web
