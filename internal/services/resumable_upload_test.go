package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"
)

// uploadServer speaks the resumable protocol: the insert call opens a session at /upload/session and
// every PUT to it is answered by chunk.
type uploadServer struct {
	mu       sync.Mutex
	ranges   []string
	received bytes.Buffer
}

func (u *uploadServer) start(t *testing.T, chunk func(w http.ResponseWriter, contentRange string)) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/upload/youtube/v3/videos":
			if got := r.URL.Query().Get("uploadType"); got != "resumable" {
				t.Errorf("expected a resumable upload, got uploadType %q", got)
			}
			w.Header().Set("Location", server.URL+"/upload/session")
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/upload/session":
			body, _ := io.ReadAll(r.Body)
			contentRange := r.Header.Get("Content-Range")
			u.mu.Lock()
			u.ranges = append(u.ranges, contentRange)
			u.received.Write(body)
			u.mu.Unlock()
			chunk(w, contentRange)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newUploadClient(t *testing.T, server *httptest.Server, opts services.ClientOptions) *services.YouTubeClient {
	t.Helper()
	opts.Endpoint = server.URL + "/"
	opts.HTTPClient = server.Client()
	opts.Logger = shared.NewLogger(io.Discard)

	client, err := services.NewYouTubeClient(context.Background(), &models.TokenBundle{AccessToken: "test-token"}, opts)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func writeVideoFile(t *testing.T, size int) (string, []byte) {
	t.Helper()
	data := bytes.Repeat([]byte("0123456789abcdef"), size/16+1)[:size]
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write video file: %v", err)
	}
	return path, data
}

func TestResumableUpload(t *testing.T) {
	t.Run("streams the file in chunks", func(t *testing.T) {
		u := &uploadServer{}
		server := u.start(t, func(w http.ResponseWriter, contentRange string) {
			if strings.HasSuffix(contentRange, "/*") {
				w.Header().Set("X-Http-Status-Code-Override", "308")
				w.WriteHeader(http.StatusOK)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"vid","snippet":{"title":"Clip"}}`))
		})
		client := newUploadClient(t, server, services.ClientOptions{ChunkSize: googleapi.MinUploadChunkSize})

		size := 3*googleapi.MinUploadChunkSize + 100
		path, data := writeVideoFile(t, size)
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("failed to open video: %v", err)
		}
		defer f.Close()

		var last int64
		created, err := client.InsertVideo(context.Background(), &youtube.Video{Snippet: &youtube.VideoSnippet{Title: "Clip"}}, f, func(current, total int64) {
			last = current
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Id != "vid" {
			t.Errorf("expected id vid, got %s", created.Id)
		}
		if len(u.ranges) != 4 {
			t.Errorf("expected 4 chunk requests, got %d: %v", len(u.ranges), u.ranges)
		}
		if !bytes.Equal(u.received.Bytes(), data) {
			t.Errorf("server received %d bytes, want the %d byte file", u.received.Len(), len(data))
		}
		if last != int64(size) {
			t.Errorf("expected progress to reach %d, got %d", size, last)
		}
	})

	t.Run("gives up on a failing chunk after the retry deadline", func(t *testing.T) {
		u := &uploadServer{}
		server := u.start(t, func(w http.ResponseWriter, contentRange string) {
			http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
		})
		client := newUploadClient(t, server, services.ClientOptions{
			ChunkSize:          googleapi.MinUploadChunkSize,
			ChunkRetryDeadline: 2 * time.Second,
		})

		path, _ := writeVideoFile(t, 2*googleapi.MinUploadChunkSize)
		policy := shared.DefaultConfig().Upload

		start := time.Now()
		_, err := tasks.UploadVideo(context.Background(), client, models.UploadRequest{Path: path, Title: "Clip"}, policy, nil)
		elapsed := time.Since(start)

		var uploadErr *shared.UploadError
		if !errors.As(err, &uploadErr) {
			t.Fatalf("expected UploadError, got %v", err)
		}
		var apiErr *shared.RemoteAPIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected the 503 as cause, got %v", err)
		}
		if len(u.ranges) < 2 {
			t.Errorf("expected the chunk to be retried, got %d attempt(s)", len(u.ranges))
		}
		if elapsed < 2*time.Second || elapsed > 30*time.Second {
			t.Errorf("expected the upload to stop near the 2s deadline, took %s", elapsed)
		}
	})
}
