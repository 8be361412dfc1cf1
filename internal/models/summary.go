package models

import "time"

// VideoSummary is a video from the uploads or likes playlist.
type VideoSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CommentSummary is a top-level comment the owner channel wrote on a video.
type CommentSummary struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	VideoID     string    `json:"video_id"`
	PublishedAt time.Time `json:"published_at"`
}

// PlaylistSummary is a playlist owned by the account.
type PlaylistSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UploadRequest describes a local video file and the metadata to publish it with.
type UploadRequest struct {
	Path        string
	Title       string
	Description string
}

// UploadResult is returned once the API has acknowledged an upload with a video id.
type UploadResult struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Privacy string `json:"privacy"`
	Bytes   int64  `json:"bytes"`
}
