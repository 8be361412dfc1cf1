// package tasks implements the account operations behind the web app, CLI and TUI.
//
// The core abstraction is AccountOperations, which lists, deletes, filters and uploads on behalf of one user.
package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
)

// AccountOperations defines the operations available on an authenticated account.
//
// Listings return the items gathered so far together with any error.
type AccountOperations interface {
	Videos(ctx context.Context) ([]models.VideoSummary, error)
	Comments(ctx context.Context) ([]models.CommentSummary, error)
	Likes(ctx context.Context) ([]models.VideoSummary, error)
	Saved(ctx context.Context) ([]models.PlaylistSummary, error)

	DeleteComment(ctx context.Context, commentID string) error
	RemoveLike(ctx context.Context, videoID string) error
	Upload(ctx context.Context, req models.UploadRequest, progress chan<- ProgressUpdate) (*models.UploadResult, error)

	DeleteSelectedComments(ctx context.Context, ids []string, progress chan<- ProgressUpdate) BulkResult
	RemoveSelectedLikes(ctx context.Context, ids []string, progress chan<- ProgressUpdate) BulkResult
	ExcludeSelectedSaved(ctx context.Context, ids []string) ([]models.PlaylistSummary, error)
}

// Options configures an [AccountEngine].
type Options struct {
	OwnerChannelID string
	CommentWorkers int
	Upload         shared.UploadConfig
	Logger         *log.Logger
}

// AccountEngine implements [AccountOperations] for one [services.Client].
type AccountEngine struct {
	client services.Client
	opts   Options
	logger *log.Logger
}

// NewAccountEngine creates an [AccountEngine] bound to client.
func NewAccountEngine(client services.Client, opts Options) *AccountEngine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if opts.OwnerChannelID != "" {
		logger = shared.WithLogger(logger, "owner", opts.OwnerChannelID)
	}
	return &AccountEngine{client: client, opts: opts, logger: logger}
}

// Client returns the underlying API client.
func (e *AccountEngine) Client() services.Client {
	return e.client
}

func (e *AccountEngine) Videos(ctx context.Context) ([]models.VideoSummary, error) {
	videos, err := ListVideos(ctx, e.client)
	e.logListing("videos", len(videos), err)
	return videos, err
}

func (e *AccountEngine) Comments(ctx context.Context) ([]models.CommentSummary, error) {
	comments, err := ListComments(ctx, e.client, CommentOptions{
		OwnerChannelID: e.opts.OwnerChannelID,
		Workers:        e.opts.CommentWorkers,
	})
	e.logListing("comments", len(comments), err)
	return comments, err
}

func (e *AccountEngine) Likes(ctx context.Context) ([]models.VideoSummary, error) {
	likes, err := ListLikes(ctx, e.client)
	e.logListing("likes", len(likes), err)
	return likes, err
}

func (e *AccountEngine) Saved(ctx context.Context) ([]models.PlaylistSummary, error) {
	saved, err := ListSaved(ctx, e.client)
	e.logListing("saved", len(saved), err)
	return saved, err
}

// DeleteComment deletes a comment, logging any failure before returning it.
func (e *AccountEngine) DeleteComment(ctx context.Context, commentID string) error {
	if err := DeleteComment(ctx, e.client, commentID); err != nil {
		e.logger.Warn("failed to delete comment", "comment", commentID, "error", err)
		return err
	}
	e.logger.Info("deleted comment", "comment", commentID)
	return nil
}

// RemoveLike removes a like, logging any failure before returning it.
func (e *AccountEngine) RemoveLike(ctx context.Context, videoID string) error {
	if err := RemoveLike(ctx, e.client, videoID); err != nil {
		e.logger.Warn("failed to remove like", "video", videoID, "error", err)
		return err
	}
	e.logger.Info("removed like", "video", videoID)
	return nil
}

func (e *AccountEngine) Upload(ctx context.Context, req models.UploadRequest, progress chan<- ProgressUpdate) (*models.UploadResult, error) {
	result, err := UploadVideo(ctx, e.client, req, e.opts.Upload, progress)
	if err != nil {
		e.logger.Error("upload failed", "path", req.Path, "title", req.Title, "error", err)
		return nil, err
	}
	e.logger.Info("uploaded video", "video", result.VideoID, "title", result.Title, "privacy", result.Privacy)
	return result, nil
}

func (e *AccountEngine) DeleteSelectedComments(ctx context.Context, ids []string, progress chan<- ProgressUpdate) BulkResult {
	result := DeleteSelectedComments(ctx, e.client, ids, progress)
	e.logBulk("delete comments", result)
	return result
}

func (e *AccountEngine) RemoveSelectedLikes(ctx context.Context, ids []string, progress chan<- ProgressUpdate) BulkResult {
	result := RemoveSelectedLikes(ctx, e.client, ids, progress)
	e.logBulk("remove likes", result)
	return result
}

func (e *AccountEngine) ExcludeSelectedSaved(ctx context.Context, ids []string) ([]models.PlaylistSummary, error) {
	saved, err := ExcludeSelectedSaved(ctx, e.client, ids)
	e.logger.Warn("saved playlists were hidden from the view but not deleted", "selected", len(ids))
	e.logListing("saved", len(saved), err)
	return saved, err
}

func (e *AccountEngine) logListing(kind string, count int, err error) {
	if err != nil {
		e.logger.Error("listing incomplete", "kind", kind, "count", count, "error", err)
		return
	}
	e.logger.Debug("listed", "kind", kind, "count", count)
}

func (e *AccountEngine) logBulk(op string, result BulkResult) {
	for _, id := range result.Attempted {
		if err, failed := result.Failed[id]; failed {
			e.logger.Warn(op+" failed", "id", id, "error", err)
		}
	}
	e.logger.Info(op, "attempted", len(result.Attempted), "failed", len(result.Failed))
}
