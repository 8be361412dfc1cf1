// package services defines interface Client for the YouTube Data API
package services

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytdash/internal/models"
	"golang.org/x/oauth2"
	"google.golang.org/api/youtube/v3"
)

// Client defines the YouTube Data API calls made on behalf of one authenticated user.
type Client interface {
	// Channel returns the authenticated user's own channel with its related playlists.
	Channel(ctx context.Context) (*youtube.Channel, error)

	// PlaylistItems returns one page of the items in a playlist.
	PlaylistItems(ctx context.Context, playlistID string, pageSize int64, cursor string) (*youtube.PlaylistItemListResponse, error)

	// Activities returns one page of the authenticated user's recent activities.
	Activities(ctx context.Context, pageSize int64, cursor string) (*youtube.ActivityListResponse, error)

	// CommentThreads returns one page of the comment threads on a video, as plain text.
	CommentThreads(ctx context.Context, videoID string, pageSize int64, cursor string) (*youtube.CommentThreadListResponse, error)

	// Playlists returns one page of the playlists owned by the authenticated user.
	Playlists(ctx context.Context, pageSize int64, cursor string) (*youtube.PlaylistListResponse, error)

	// InsertVideo uploads media with the given metadata and blocks until the API returns the created video.
	InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, progress func(current, total int64)) (*youtube.Video, error)

	// RateVideo sets the user's rating on a video: "like", "dislike" or "none".
	RateVideo(ctx context.Context, videoID, rating string) error

	// DeleteComment deletes a comment by id.
	DeleteComment(ctx context.Context, commentID string) error

	// Token returns the current, possibly refreshed, OAuth token.
	Token() (*oauth2.Token, error)
}

// ClientFactory builds a [Client] for a token bundle. The web app calls it once per request.
type ClientFactory func(ctx context.Context, bundle *models.TokenBundle) (Client, error)

// ClientOptions configures a [YouTubeClient].
type ClientOptions struct {
	// Endpoint overrides the API base URL, e.g. an httptest server. Must end with "/".
	Endpoint string
	// RequestsPerSecond limits outbound calls; zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// ChunkSize is the resumable upload chunk size in bytes.
	ChunkSize int
	// ChunkRetryDeadline bounds retries of a single failed chunk before the upload is abandoned.
	ChunkRetryDeadline time.Duration
	// HTTPClient is used for token refreshes and as the base transport when set.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Factory returns a [ClientFactory] that builds clients with these options.
func (o ClientOptions) Factory() ClientFactory {
	return func(ctx context.Context, bundle *models.TokenBundle) (Client, error) {
		return NewYouTubeClient(ctx, bundle, o)
	}
}
