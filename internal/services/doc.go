// Package services defines the [Client] interface for the YouTube Data API and implements it with google.golang.org/api/youtube/v3.
//
// # Client
//
// A [Client] exposes the remote call shapes ytdash needs: the owner's channel lookup,
// playlist item, activity, comment thread and playlist listings, and the three mutations
// (video insert, video rate, comment delete). Listings take a page size and cursor and
// return the raw API response so callers can drive pagination.
//
// # YouTubeClient
//
// [NewYouTubeClient] builds a [YouTubeClient] from a [models.TokenBundle]. It makes no network call.
// The underlying [oauth2.TokenSource] refreshes the access token when a refresh token is present,
// and [YouTubeClient.Token] returns the current token so callers can write it back to the session.
//
// Outbound requests pass through a token-bucket limited transport ([NewRateLimitedTransport]).
//
// # OAuth
//
// [OAuthService] wraps the Google OAuth client configuration used by the web login and the CLI
// `auth login` flow. Tokens are requested with offline access so they can be refreshed.
//
// # Error Handling
//
// Every remote failure is mapped to a typed error from the shared package:
//   - [shared.AuthenticationError] : missing bundle, 401 responses and failed refreshes
//   - [shared.RemoteAPIError] : any other failure, carrying the operation name and HTTP status
package services
