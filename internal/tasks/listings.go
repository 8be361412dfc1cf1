package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/youtube/v3"
)

// CommentOptions controls [ListComments].
type CommentOptions struct {
	// OwnerChannelID selects whose comments are kept. Resolved from the authenticated channel when empty.
	OwnerChannelID string
	// Workers bounds concurrent per-video comment listings. Values below 2 list videos one at a time.
	Workers int
}

// ListVideos returns every video in the channel's uploads playlist.
func ListVideos(ctx context.Context, c services.Client) ([]models.VideoSummary, error) {
	playlistID, err := relatedPlaylist(ctx, c, "uploads")
	if err != nil {
		return nil, err
	}
	return playlistVideos(ctx, c, playlistID)
}

// ListLikes returns every video in the channel's likes playlist.
func ListLikes(ctx context.Context, c services.Client) ([]models.VideoSummary, error) {
	playlistID, err := relatedPlaylist(ctx, c, "likes")
	if err != nil {
		return nil, err
	}
	return playlistVideos(ctx, c, playlistID)
}

// ListSaved returns every playlist owned by the account.
func ListSaved(ctx context.Context, c services.Client) ([]models.PlaylistSummary, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) ([]models.PlaylistSummary, string, error) {
		resp, err := c.Playlists(ctx, PageSize, cursor)
		if err != nil {
			return nil, "", err
		}

		playlists := make([]models.PlaylistSummary, 0, len(resp.Items))
		for _, p := range resp.Items {
			summary := models.PlaylistSummary{ID: p.Id}
			if p.Snippet != nil {
				summary.Title = p.Snippet.Title
				summary.Description = p.Snippet.Description
			}
			playlists = append(playlists, summary)
		}
		return playlists, resp.NextPageToken, nil
	})
}

// ListComments returns the top-level comments the owner channel wrote on the videos found in the account's activities.
//
// Comments are grouped by video in the order the videos first appear in the activity feed.
// A failing video listing does not stop the others; the failures are joined into the returned error.
// An authentication failure stops the whole listing.
func ListComments(ctx context.Context, c services.Client, opts CommentOptions) ([]models.CommentSummary, error) {
	owner := opts.OwnerChannelID
	if owner == "" {
		channel, err := c.Channel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve owner channel: %w", err)
		}
		owner = channel.Id
	}

	videoIDs, listErr := activityVideoIDs(ctx, c)
	if listErr != nil {
		if shared.IsAuthError(listErr) {
			return nil, listErr
		}
		listErr = fmt.Errorf("failed to list activities: %w", listErr)
	}

	perVideo := make([][]models.CommentSummary, len(videoIDs))
	errs := make([]error, len(videoIDs)+1)
	errs[0] = listErr

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, videoID := range videoIDs {
		g.Go(func() error {
			comments, err := Paginate(gctx, commentPage(c, videoID, owner))
			perVideo[i] = comments
			if err != nil {
				errs[i+1] = fmt.Errorf("failed to list comments on %s: %w", videoID, err)
				if shared.IsAuthError(err) {
					return err
				}
			}
			return nil
		})
	}

	authErr := g.Wait()

	var comments []models.CommentSummary
	for _, batch := range perVideo {
		comments = append(comments, batch...)
	}
	if authErr != nil {
		return comments, authErr
	}
	return comments, errors.Join(errs...)
}

// IsOwnComment reports whether thread's top-level comment was written by owner.
func IsOwnComment(thread *youtube.CommentThread, owner string) bool {
	if thread == nil || thread.Snippet == nil || thread.Snippet.TopLevelComment == nil {
		return false
	}
	snippet := thread.Snippet.TopLevelComment.Snippet
	if snippet == nil || snippet.AuthorChannelId == nil {
		return false
	}
	return owner != "" && snippet.AuthorChannelId.Value == owner
}

func commentPage(c services.Client, videoID, owner string) PageFunc[models.CommentSummary] {
	return func(ctx context.Context, cursor string) ([]models.CommentSummary, string, error) {
		resp, err := c.CommentThreads(ctx, videoID, PageSize, cursor)
		if err != nil {
			return nil, "", err
		}

		var comments []models.CommentSummary
		for _, thread := range resp.Items {
			if !IsOwnComment(thread, owner) {
				continue
			}
			top := thread.Snippet.TopLevelComment
			published, _ := time.Parse(time.RFC3339, top.Snippet.PublishedAt)
			comments = append(comments, models.CommentSummary{
				ID:          top.Id,
				Text:        top.Snippet.TextOriginal,
				VideoID:     videoID,
				PublishedAt: published,
			})
		}
		return comments, resp.NextPageToken, nil
	}
}

// activityVideoIDs lists every activity and returns the distinct uploaded or playlisted video ids in first-seen order.
func activityVideoIDs(ctx context.Context, c services.Client) ([]string, error) {
	ids, err := Paginate(ctx, func(ctx context.Context, cursor string) ([]string, string, error) {
		resp, err := c.Activities(ctx, PageSize, cursor)
		if err != nil {
			return nil, "", err
		}

		var ids []string
		for _, item := range resp.Items {
			details := item.ContentDetails
			if details == nil {
				continue
			}
			if details.Upload != nil && details.Upload.VideoId != "" {
				ids = append(ids, details.Upload.VideoId)
			}
			if details.PlaylistItem != nil && details.PlaylistItem.ResourceId != nil && details.PlaylistItem.ResourceId.VideoId != "" {
				ids = append(ids, details.PlaylistItem.ResourceId.VideoId)
			}
		}
		return ids, resp.NextPageToken, nil
	})
	return distinct(ids), err
}

// relatedPlaylist resolves one of the channel's platform-managed playlists ("uploads" or "likes").
func relatedPlaylist(ctx context.Context, c services.Client, role string) (string, error) {
	channel, err := c.Channel(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s playlist: %w", role, err)
	}

	var id string
	if channel.ContentDetails != nil && channel.ContentDetails.RelatedPlaylists != nil {
		switch role {
		case "uploads":
			id = channel.ContentDetails.RelatedPlaylists.Uploads
		case "likes":
			id = channel.ContentDetails.RelatedPlaylists.Likes
		}
	}
	if id == "" {
		return "", fmt.Errorf("%w: channel %s has no %s playlist", shared.ErrChannelNotFound, channel.Id, role)
	}
	return id, nil
}

func playlistVideos(ctx context.Context, c services.Client, playlistID string) ([]models.VideoSummary, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) ([]models.VideoSummary, string, error) {
		resp, err := c.PlaylistItems(ctx, playlistID, PageSize, cursor)
		if err != nil {
			return nil, "", err
		}

		videos := make([]models.VideoSummary, 0, len(resp.Items))
		for _, item := range resp.Items {
			videos = append(videos, videoSummary(item))
		}
		return videos, resp.NextPageToken, nil
	})
}

func videoSummary(item *youtube.PlaylistItem) models.VideoSummary {
	var v models.VideoSummary
	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		v.Description = item.Snippet.Description
		if item.Snippet.ResourceId != nil {
			v.ID = item.Snippet.ResourceId.VideoId
		}
	}
	if v.ID == "" && item.ContentDetails != nil {
		v.ID = item.ContentDetails.VideoId
	}
	return v
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
