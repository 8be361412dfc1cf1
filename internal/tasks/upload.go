package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"google.golang.org/api/youtube/v3"
)

// ValidateUpload checks the request against the upload policy before any file or network access.
func ValidateUpload(req models.UploadRequest, policy shared.UploadConfig) error {
	if strings.TrimSpace(req.Path) == "" {
		return &shared.ValidationError{Field: "video_file", Reason: "is required"}
	}
	if strings.TrimSpace(req.Title) == "" {
		return &shared.ValidationError{Field: "title", Reason: "is required"}
	}
	return checkExtension(req.Path, policy.AllowedExtensions)
}

// SaveUpload writes r to a uniquely named file in dir and returns its path.
//
// The client-supplied filename is sanitized and prefixed with a random id; disallowed extensions are
// rejected before anything is written.
func SaveUpload(dir, filename string, r io.Reader, allowed []string) (string, error) {
	name := shared.SanitizeFilename(filename)
	if name == "" {
		return "", &shared.ValidationError{Field: "video_file", Reason: "is required"}
	}
	if err := checkExtension(name, allowed); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, shared.GenerateID()+"_"+name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}

// UploadVideo publishes the file at req.Path with the policy's tags, category and privacy.
//
// It blocks until the API returns the created video. Failures after validation are reported as
// [shared.UploadError], except authentication failures which are returned as they are.
func UploadVideo(ctx context.Context, c services.Client, req models.UploadRequest, policy shared.UploadConfig, progress chan<- ProgressUpdate) (*models.UploadResult, error) {
	if err := ValidateUpload(req, policy); err != nil {
		return nil, err
	}

	f, err := os.Open(req.Path)
	if err != nil {
		return nil, &shared.ValidationError{Field: "video_file", Reason: "cannot be opened"}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &shared.UploadError{Path: req.Path, Err: err}
	}
	size := info.Size()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        policy.Tags,
			CategoryId:  policy.CategoryID,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: policy.Privacy},
	}

	sendProgress(progress, uploadUpdate(0, size, req.Title))
	created, err := c.InsertVideo(ctx, video, f, func(current, total int64) {
		if total <= 0 {
			total = size
		}
		sendProgress(progress, uploadUpdate(current, total, req.Title))
	})
	if err != nil {
		if shared.IsAuthError(err) {
			return nil, err
		}
		return nil, &shared.UploadError{Path: req.Path, Err: err}
	}
	sendProgress(progress, uploadUpdate(size, size, req.Title))

	return &models.UploadResult{
		VideoID: created.Id,
		Title:   req.Title,
		Privacy: policy.Privacy,
		Bytes:   size,
	}, nil
}

func checkExtension(name string, allowed []string) error {
	ext := shared.Extension(name)
	if ext == "" || !slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, ext) }) {
		return &shared.ValidationError{
			Field:  "video_file",
			Reason: fmt.Sprintf("has a disallowed extension %q (allowed: %s)", ext, strings.Join(allowed, ", ")),
		}
	}
	return nil
}
