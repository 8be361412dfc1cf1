package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
)

// BulkResult records a selection operation: every id that was attempted, and the ones that failed.
type BulkResult struct {
	Attempted []string
	Failed    map[string]error
}

// Succeeded returns the attempted ids that did not fail, in attempt order.
func (r BulkResult) Succeeded() []string {
	ok := make([]string, 0, len(r.Attempted))
	for _, id := range r.Attempted {
		if _, failed := r.Failed[id]; !failed {
			ok = append(ok, id)
		}
	}
	return ok
}

// Err joins the failures in attempt order, or returns nil when every id succeeded.
func (r BulkResult) Err() error {
	var errs []error
	for _, id := range r.Attempted {
		if err, ok := r.Failed[id]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// DeleteComment deletes one comment.
func DeleteComment(ctx context.Context, c services.Client, commentID string) error {
	if commentID == "" {
		return &shared.ValidationError{Field: "comment_id", Reason: "is required"}
	}
	return c.DeleteComment(ctx, commentID)
}

// RemoveLike resets the user's rating on a video to "none". Removing a like that is not there succeeds.
func RemoveLike(ctx context.Context, c services.Client, videoID string) error {
	if videoID == "" {
		return &shared.ValidationError{Field: "video_id", Reason: "is required"}
	}
	return c.RateVideo(ctx, videoID, "none")
}

// DeleteSelectedComments deletes each comment in order. A failure never stops the remaining deletions
// and nothing is rolled back.
func DeleteSelectedComments(ctx context.Context, c services.Client, ids []string, progress chan<- ProgressUpdate) BulkResult {
	return applyEach(ctx, ids, DeleteCommentsPhase, progress, func(ctx context.Context, id string) error {
		return DeleteComment(ctx, c, id)
	})
}

// RemoveSelectedLikes removes the like from each video in order, with the same policy as [DeleteSelectedComments].
func RemoveSelectedLikes(ctx context.Context, c services.Client, ids []string, progress chan<- ProgressUpdate) BulkResult {
	return applyEach(ctx, ids, RemoveLikesPhase, progress, func(ctx context.Context, id string) error {
		return RemoveLike(ctx, c, id)
	})
}

// ExcludeSelectedSaved re-lists the saved playlists and drops exactly the selected ids from the result.
//
// No playlist is deleted on YouTube; the selection only hides playlists from this view.
// TODO: call playlists.delete once removing saved playlists for real is confirmed as the intended behavior.
func ExcludeSelectedSaved(ctx context.Context, c services.Client, ids []string) ([]models.PlaylistSummary, error) {
	saved, err := ListSaved(ctx, c)
	return slices.DeleteFunc(saved, func(p models.PlaylistSummary) bool {
		return slices.Contains(ids, p.ID)
	}), err
}

func applyEach(ctx context.Context, ids []string, phase Phase, progress chan<- ProgressUpdate, op func(context.Context, string) error) BulkResult {
	result := BulkResult{Attempted: make([]string, 0, len(ids)), Failed: make(map[string]error)}

	for i, id := range ids {
		result.Attempted = append(result.Attempted, id)
		err := op(ctx, id)
		if err != nil {
			result.Failed[id] = err
		}
		sendProgress(progress, selectionUpdate(phase, i+1, len(ids), id, err))
	}

	return result
}
