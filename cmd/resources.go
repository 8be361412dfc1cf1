package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/ytdash/internal/formatter"
	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
	"github.com/urfave/cli/v3"
)

// VideosList lists the channel's uploads.
func (r *Runner) VideosList(ctx context.Context, cmd *cli.Command) error {
	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		videos, err := engine.Videos(ctx)
		if werr := r.writeListing(cmd, formatter.Videos("My videos", videos), videos); werr != nil {
			return werr
		}
		return r.listingResult("videos", len(videos), err)
	})
}

// CommentsList lists the owner's comments on recent activity.
func (r *Runner) CommentsList(ctx context.Context, cmd *cli.Command) error {
	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		comments, err := engine.Comments(ctx)
		if werr := r.writeListing(cmd, formatter.Comments(comments), comments); werr != nil {
			return werr
		}
		return r.listingResult("comments", len(comments), err)
	})
}

// LikesList lists the videos in the likes playlist.
func (r *Runner) LikesList(ctx context.Context, cmd *cli.Command) error {
	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		likes, err := engine.Likes(ctx)
		if werr := r.writeListing(cmd, formatter.Videos("My likes", likes), likes); werr != nil {
			return werr
		}
		return r.listingResult("likes", len(likes), err)
	})
}

// PlaylistsList lists the account's playlists, minus any --exclude ids.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	exclude := cmd.StringSlice("exclude")

	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		var saved []models.PlaylistSummary
		var err error
		if len(exclude) > 0 {
			saved, err = engine.ExcludeSelectedSaved(ctx, exclude)
		} else {
			saved, err = engine.Saved(ctx)
		}
		if werr := r.writeListing(cmd, formatter.Playlists(saved), saved); werr != nil {
			return werr
		}
		return r.listingResult("playlists", len(saved), err)
	})
}

// CommentsDelete deletes every comment id given as an argument, continuing past failures.
func (r *Runner) CommentsDelete(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one comment id", shared.ErrMissingArgument)
	}

	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		result := r.runBulk(ids, func(progress chan<- tasks.ProgressUpdate) tasks.BulkResult {
			return engine.DeleteSelectedComments(ctx, ids, progress)
		}, cmd.Bool("json"))
		return r.writeBulk(cmd, "Deleted", "comment", result)
	})
}

// LikesRemove removes the like from every video id given as an argument, continuing past failures.
func (r *Runner) LikesRemove(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one video id", shared.ErrMissingArgument)
	}

	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		result := r.runBulk(ids, func(progress chan<- tasks.ProgressUpdate) tasks.BulkResult {
			return engine.RemoveSelectedLikes(ctx, ids, progress)
		}, cmd.Bool("json"))
		return r.writeBulk(cmd, "Removed", "like", result)
	})
}

// Upload validates the file locally, then uploads it with the configured metadata policy.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	req := models.UploadRequest{
		Path:        cmd.String("file"),
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
	}
	if err := tasks.ValidateUpload(req, r.config.Upload); err != nil {
		return err
	}

	quiet := cmd.Bool("json")
	return r.withAccount(ctx, func(engine *tasks.AccountEngine) error {
		progress := make(chan tasks.ProgressUpdate, 50)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := -1
			for update := range progress {
				if !quiet && update.Step != last {
					last = update.Step
					r.writePlain("\r→ %s", update.Message)
				}
			}
		}()

		result, err := engine.Upload(ctx, req, progress)
		close(progress)
		wg.Wait()

		if err != nil {
			return err
		}
		if quiet {
			return r.writeJSON(result, true)
		}

		r.writePlainln("✓ Video successfully uploaded to YouTube")
		r.writePlain("  ID: %s\n", result.VideoID)
		r.writePlain("  Title: %s\n", result.Title)
		r.writePlain("  Privacy: %s\n", result.Privacy)
		r.writePlain("  URL: https://www.youtube.com/watch?v=%s\n", result.VideoID)
		return nil
	})
}

// runBulk runs op while printing its per-item progress lines.
func (r *Runner) runBulk(ids []string, op func(chan<- tasks.ProgressUpdate) tasks.BulkResult, quiet bool) tasks.BulkResult {
	progress := make(chan tasks.ProgressUpdate, len(ids))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if !quiet {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result := op(progress)
	close(progress)
	wg.Wait()
	return result
}

type bulkOutput struct {
	Attempted []string          `json:"attempted"`
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

func (r *Runner) writeBulk(cmd *cli.Command, verb, noun string, result tasks.BulkResult) error {
	if cmd.Bool("json") {
		out := bulkOutput{Attempted: result.Attempted, Succeeded: result.Succeeded(), Failed: map[string]string{}}
		for id, err := range result.Failed {
			out.Failed[id] = err.Error()
		}
		if err := r.writeJSON(out, true); err != nil {
			return err
		}
	} else {
		r.writePlainln("%s %d of %d %s(s)", verb, len(result.Succeeded()), len(result.Attempted), noun)
	}

	if err := result.Err(); err != nil {
		for _, failedErr := range result.Failed {
			if shared.IsAuthError(failedErr) {
				return failedErr
			}
		}
		failed := make([]string, 0, len(result.Failed))
		for _, id := range result.Attempted {
			if _, ok := result.Failed[id]; ok {
				failed = append(failed, id)
			}
		}
		return fmt.Errorf("%d %s(s) failed %v: %w", len(failed), noun, failed, err)
	}
	return nil
}
