// YouTube Data API v3 implementation of [Client]
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeClient implements [Client] over a [youtube.Service] bound to one user's token.
type YouTubeClient struct {
	service *youtube.Service
	source  oauth2.TokenSource
	opts    ClientOptions
	logger  *log.Logger
}

// NewYouTubeClient builds an authenticated client from bundle.
//
// No request is sent: a missing or unusable bundle fails immediately with [shared.AuthenticationError],
// anything the API rejects later is reported by the individual calls.
func NewYouTubeClient(ctx context.Context, bundle *models.TokenBundle, opts ClientOptions) (*YouTubeClient, error) {
	if bundle == nil || bundle.AccessToken == "" {
		return nil, &shared.AuthenticationError{}
	}
	if !bundle.Valid() {
		return nil, &shared.AuthenticationError{Err: fmt.Errorf("%w: %w", shared.ErrTokenExpired, shared.ErrNoRefreshToken)}
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var base http.RoundTripper = http.DefaultTransport
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
		if opts.HTTPClient.Transport != nil {
			base = opts.HTTPClient.Transport
		}
	}

	// The refresh request is sent later, so the token source must not be tied to a short-lived request context.
	source := bundle.Config().TokenSource(context.WithoutCancel(ctx), bundle.Token())
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: source,
			Base:   NewRateLimitedTransport(base, opts.RequestsPerSecond, opts.Burst),
		},
	}

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if opts.Endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(opts.Endpoint))
	}

	service, err := youtube.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &YouTubeClient{service: service, source: source, opts: opts, logger: logger}, nil
}

// Token returns the current access token, refreshing it first when it has expired.
func (c *YouTubeClient) Token() (*oauth2.Token, error) {
	token, err := c.source.Token()
	if err != nil {
		return nil, mapError("token.refresh", err)
	}
	return token, nil
}

// Channel returns the authenticated user's channel.
//
// Calls channels.list with mine=true.
func (c *YouTubeClient) Channel(ctx context.Context) (*youtube.Channel, error) {
	resp, err := c.service.Channels.List([]string{"id", "contentDetails"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, mapError("channels.list", err)
	}
	if len(resp.Items) == 0 {
		return nil, &shared.RemoteAPIError{Op: "channels.list", StatusCode: http.StatusNotFound, Err: shared.ErrChannelNotFound}
	}
	return resp.Items[0], nil
}

// PlaylistItems calls playlistItems.list for one page of playlistID.
func (c *YouTubeClient) PlaylistItems(ctx context.Context, playlistID string, pageSize int64, cursor string) (*youtube.PlaylistItemListResponse, error) {
	call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapError("playlistItems.list", err)
	}
	c.logger.Debug("listed playlist items", "playlist", playlistID, "count", len(resp.Items), "next", resp.NextPageToken)
	return resp, nil
}

// Activities calls activities.list with mine=true for one page.
func (c *YouTubeClient) Activities(ctx context.Context, pageSize int64, cursor string) (*youtube.ActivityListResponse, error) {
	call := c.service.Activities.List([]string{"snippet", "contentDetails"}).
		Mine(true).
		MaxResults(pageSize).
		Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapError("activities.list", err)
	}
	c.logger.Debug("listed activities", "count", len(resp.Items), "next", resp.NextPageToken)
	return resp, nil
}

// CommentThreads calls commentThreads.list for one page of a video's threads.
func (c *YouTubeClient) CommentThreads(ctx context.Context, videoID string, pageSize int64, cursor string) (*youtube.CommentThreadListResponse, error) {
	call := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(pageSize).
		TextFormat("plainText").
		Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapError("commentThreads.list", err)
	}
	c.logger.Debug("listed comment threads", "video", videoID, "count", len(resp.Items), "next", resp.NextPageToken)
	return resp, nil
}

// Playlists calls playlists.list with mine=true for one page.
func (c *YouTubeClient) Playlists(ctx context.Context, pageSize int64, cursor string) (*youtube.PlaylistListResponse, error) {
	call := c.service.Playlists.List([]string{"snippet"}).
		Mine(true).
		MaxResults(pageSize).
		Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapError("playlists.list", err)
	}
	return resp, nil
}

// InsertVideo calls videos.insert with a resumable, chunked media upload.
//
// Each failed chunk is retried until ChunkRetryDeadline passes; the call then fails.
// progress may be nil. Media that fits in a single chunk is sent as one multipart request.
func (c *YouTubeClient) InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, progress func(current, total int64)) (*youtube.Video, error) {
	mediaOpts := []googleapi.MediaOption{}
	if c.opts.ChunkSize > 0 {
		mediaOpts = append(mediaOpts, googleapi.ChunkSize(c.opts.ChunkSize))
	}
	if c.opts.ChunkRetryDeadline > 0 {
		mediaOpts = append(mediaOpts, googleapi.ChunkRetryDeadline(c.opts.ChunkRetryDeadline))
	}

	call := c.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media, mediaOpts...).
		Context(ctx)
	if progress != nil {
		call = call.ProgressUpdater(googleapi.ProgressUpdater(progress))
	}

	created, err := call.Do()
	if err != nil {
		return nil, mapError("videos.insert", err)
	}
	if created == nil || created.Id == "" {
		return nil, &shared.RemoteAPIError{Op: "videos.insert", Err: shared.ErrUploadIncomplete}
	}
	return created, nil
}

// RateVideo calls videos.rate.
func (c *YouTubeClient) RateVideo(ctx context.Context, videoID, rating string) error {
	if err := c.service.Videos.Rate(videoID, rating).Context(ctx).Do(); err != nil {
		return mapError("videos.rate", err)
	}
	return nil
}

// DeleteComment calls comments.delete.
func (c *YouTubeClient) DeleteComment(ctx context.Context, commentID string) error {
	if err := c.service.Comments.Delete(commentID).Context(ctx).Do(); err != nil {
		return mapError("comments.delete", err)
	}
	return nil
}
