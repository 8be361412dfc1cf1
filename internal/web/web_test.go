package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/services"
	"github.com/desertthunder/ytdash/internal/shared"
	tu "github.com/desertthunder/ytdash/internal/testing"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"google.golang.org/api/youtube/v3"
)

type fakeAuth struct {
	bundle *models.TokenBundle
	err    error
}

func (f *fakeAuth) GetAuthURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (f *fakeAuth) Exchange(ctx context.Context, code string) (*models.TokenBundle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if code != "good-code" {
		return nil, errors.New("bad code")
	}
	b := *f.bundle
	return &b, nil
}

// testApp runs the web app against a FakeClient and records the bundles handed to the client factory.
type testApp struct {
	t      *testing.T
	fake   *tu.FakeClient
	server *httptest.Server
	client *http.Client
	config *shared.Config
	logs   *bytes.Buffer

	mu      sync.Mutex
	bundles []*models.TokenBundle
}

func newTestApp(t *testing.T, store sessions.Store) *testApp {
	t.Helper()

	ta := &testApp{t: t, fake: tu.NewFakeClient(), logs: &bytes.Buffer{}}
	ta.fake.Tok = &oauth2.Token{AccessToken: "access-1"}

	ta.config = shared.DefaultConfig()
	ta.config.Credentials.YouTube.ChannelID = "UC-owner"
	ta.config.Upload.Dir = t.TempDir()

	if store == nil {
		cookieStore, err := NewStore(shared.ServerConfig{
			SessionStore:  "cookie",
			SessionSecret: "test-secret",
			SessionMaxAge: 3600,
		}, nil, shared.NewLogger(ta.logs))
		if err != nil {
			t.Fatalf("failed to create session store: %v", err)
		}
		store = cookieStore
	}

	clients := func(ctx context.Context, bundle *models.TokenBundle) (services.Client, error) {
		ta.mu.Lock()
		defer ta.mu.Unlock()
		copied := *bundle
		ta.bundles = append(ta.bundles, &copied)
		return ta.fake, nil
	}

	app, err := New(Options{
		Config:  ta.config,
		Auth:    &fakeAuth{bundle: &models.TokenBundle{AccessToken: "access-1", RefreshToken: "refresh-1"}},
		Clients: clients,
		Store:   store,
		Logger:  shared.NewLogger(ta.logs),
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	ta.server = httptest.NewServer(app.Routes())
	t.Cleanup(ta.server.Close)

	jar, _ := cookiejar.New(nil)
	ta.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return ta
}

func (ta *testApp) do(req *http.Request) (*http.Response, string) {
	ta.t.Helper()
	resp, err := ta.client.Do(req)
	if err != nil {
		ta.t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (ta *testApp) get(path string, htmx bool) (*http.Response, string) {
	ta.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, ta.server.URL+path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return ta.do(req)
}

func (ta *testApp) postForm(path string, form url.Values) (*http.Response, string) {
	ta.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, ta.server.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return ta.do(req)
}

func (ta *testApp) login() {
	ta.t.Helper()
	resp, _ := ta.get("/login", false)
	if resp.StatusCode != http.StatusFound {
		ta.t.Fatalf("expected login redirect, got %d", resp.StatusCode)
	}
	consent, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		ta.t.Fatalf("bad consent url: %v", err)
	}

	resp, _ = ta.get("/authorized?code=good-code&state="+url.QueryEscape(consent.Query().Get("state")), false)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/dashboard" {
		ta.t.Fatalf("expected redirect to dashboard, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func (ta *testApp) lastBundle() *models.TokenBundle {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	if len(ta.bundles) == 0 {
		return nil
	}
	return ta.bundles[len(ta.bundles)-1]
}

func TestAuthFlow(t *testing.T) {
	t.Run("protected routes redirect to login", func(t *testing.T) {
		ta := newTestApp(t, nil)

		resp, _ := ta.get("/dashboard", false)
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
			t.Errorf("expected redirect to /login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
		}

		resp, _ = ta.get("/my_videos", true)
		if resp.StatusCode != http.StatusUnauthorized || resp.Header.Get("HX-Redirect") != "/login" {
			t.Errorf("expected HX-Redirect to /login, got %d %v", resp.StatusCode, resp.Header)
		}
		if ta.fake.CallCount("") != 0 {
			t.Errorf("expected no API calls, got %v", ta.fake.Calls)
		}
	})

	t.Run("login stores the token bundle", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		resp, body := ta.get("/dashboard", false)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, `hx-get="/my_videos"`) || !strings.Contains(body, "Log out") {
			t.Errorf("expected dashboard layout, got %s", body)
		}
		if b := ta.lastBundle(); b == nil || b.AccessToken != "access-1" || b.RefreshToken != "refresh-1" {
			t.Errorf("expected session bundle to reach the client factory, got %+v", b)
		}
	})

	t.Run("forged state is rejected", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.get("/login", false)

		resp, _ := ta.get("/authorized?code=good-code&state=forged", false)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}

		resp, _ = ta.get("/dashboard", false)
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected to remain signed out, got %d", resp.StatusCode)
		}
	})

	t.Run("callback without login is rejected", func(t *testing.T) {
		ta := newTestApp(t, nil)
		resp, _ := ta.get("/authorized?code=good-code&state=", false)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("failed exchange flashes an error", func(t *testing.T) {
		ta := newTestApp(t, nil)
		resp, _ := ta.get("/login", false)
		consent, _ := url.Parse(resp.Header.Get("Location"))

		resp, _ = ta.get("/authorized?code=bad-code&state="+url.QueryEscape(consent.Query().Get("state")), false)
		if resp.Header.Get("Location") != "/" {
			t.Fatalf("expected redirect home, got %s", resp.Header.Get("Location"))
		}

		_, body := ta.get("/", false)
		if !strings.Contains(body, "Sign-in failed") {
			t.Errorf("expected flash message, got %s", body)
		}
	})

	t.Run("logout", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		resp, _ := ta.get("/logout", false)
		if resp.Header.Get("Location") != "/" {
			t.Errorf("expected redirect home, got %s", resp.Header.Get("Location"))
		}

		resp, _ = ta.get("/dashboard", false)
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected signed out, got %d", resp.StatusCode)
		}
	})

	t.Run("authentication failure signs out", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.ChannelErr = &shared.AuthenticationError{Err: shared.ErrTokenExpired}

		resp, _ := ta.get("/my_videos", true)
		if resp.Header.Get("HX-Redirect") != "/login" {
			t.Errorf("expected HX-Redirect, got %v", resp.Header)
		}

		resp, _ = ta.get("/dashboard", false)
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected session to be cleared, got %d", resp.StatusCode)
		}
	})

	t.Run("refreshed token is written back", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.Tok = &oauth2.Token{AccessToken: "access-2"}

		ta.get("/my_saved", true)
		ta.get("/my_saved", true)

		b := ta.lastBundle()
		if b.AccessToken != "access-2" || b.RefreshToken != "refresh-1" {
			t.Errorf("expected refreshed access token with original refresh token, got %+v", b)
		}
	})

	t.Run("health", func(t *testing.T) {
		ta := newTestApp(t, nil)

		resp, body := ta.get("/healthz", false)
		if resp.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON, got %s", resp.Header.Get("Content-Type"))
		}
		if !strings.Contains(body, `"authenticated":false`) {
			t.Errorf("unexpected body %s", body)
		}
		if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "no-store") {
			t.Errorf("expected uncacheable response, got Cache-Control %q", cc)
		}
	})
}

func TestListings(t *testing.T) {
	t.Run("videos partial and full page", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.PlaylistItemPages["UU-owner"] = [][]*youtube.PlaylistItem{
			{tu.NewPlaylistItem("v1", "First <upload>")},
			{tu.NewPlaylistItem("v2", "Second")},
		}

		_, partial := ta.get("/my_videos", true)
		if strings.Contains(partial, "<html") {
			t.Error("HTMX request should get the bare partial")
		}
		if !strings.Contains(partial, "First &lt;upload&gt;") || !strings.Contains(partial, "Second") {
			t.Errorf("expected escaped titles from both pages, got %s", partial)
		}
		if !strings.Contains(partial, "My videos (2)") {
			t.Errorf("expected count, got %s", partial)
		}

		_, full := ta.get("/my_videos", false)
		if !strings.Contains(full, "<html") {
			t.Error("plain request should get the layout")
		}
	})

	t.Run("partial listing shows a warning", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.PlaylistItemPages["LL-owner"] = [][]*youtube.PlaylistItem{
			{tu.NewPlaylistItem("v1", "Kept")},
			{tu.NewPlaylistItem("v2", "Lost")},
		}
		ta.fake.Errors["playlistItems.list:LL-owner#1"] = &shared.RemoteAPIError{Op: "playlistItems.list", StatusCode: 500, Err: errors.New("backend")}

		resp, body := ta.get("/my_likes", true)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "may be incomplete") || !strings.Contains(body, "Kept") {
			t.Errorf("expected warning and partial list, got %s", body)
		}
	})

	t.Run("comments", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.ActivityPages = [][]*youtube.Activity{{tu.NewUploadActivity("v1")}}
		ta.fake.CommentThreadPages["v1"] = [][]*youtube.CommentThread{
			{tu.NewCommentThread("c1", "UC-owner", "my words"), tu.NewCommentThread("c2", "UC-other", "not mine")},
		}

		_, body := ta.get("/my_comments", true)
		if !strings.Contains(body, "my words") || strings.Contains(body, "not mine") {
			t.Errorf("expected only the owner's comment, got %s", body)
		}
		if !strings.Contains(body, `formaction="/delete_comment/c1" formmethod="post"`) {
			t.Errorf("expected a POST delete button, got %s", body)
		}
	})

	t.Run("saved", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.PlaylistPages = [][]*youtube.Playlist{{tu.NewPlaylist("PL1", "Road trip")}}

		_, body := ta.get("/my_saved", true)
		if !strings.Contains(body, "Road trip") {
			t.Errorf("expected playlist, got %s", body)
		}
	})
}

func TestMutations(t *testing.T) {
	t.Run("delete one comment", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		resp, _ := ta.get("/delete_comment/c1", false)
		if resp.Header.Get("Location") != "/my_comments" {
			t.Errorf("expected redirect to comments, got %s", resp.Header.Get("Location"))
		}
		if len(ta.fake.Deleted) != 1 || ta.fake.Deleted[0] != "c1" {
			t.Errorf("expected c1 to be deleted, got %v", ta.fake.Deleted)
		}
	})

	t.Run("delete one comment by POST", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		resp, _ := ta.postForm("/delete_comment/c2", url.Values{})
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/my_comments" {
			t.Errorf("expected redirect to comments, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
		}
		if len(ta.fake.Deleted) != 1 || ta.fake.Deleted[0] != "c2" {
			t.Errorf("expected c2 to be deleted, got %v", ta.fake.Deleted)
		}
	})

	t.Run("failed delete still redirects", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.Errors["comments.delete:c1"] = &shared.RemoteAPIError{Op: "comments.delete", StatusCode: 403, Err: errors.New("forbidden")}

		resp, _ := ta.get("/delete_comment/c1", false)
		if resp.Header.Get("Location") != "/my_comments" {
			t.Errorf("expected redirect to comments, got %s", resp.Header.Get("Location"))
		}

		_, body := ta.get("/my_comments", false)
		if !strings.Contains(body, "Could not delete comment c1") {
			t.Errorf("expected failure flash, got %s", body)
		}
	})

	t.Run("bulk comment delete attempts every id", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.Errors["comments.delete:B"] = &shared.RemoteAPIError{Op: "comments.delete", StatusCode: 500, Err: errors.New("boom")}

		resp, body := ta.postForm("/delete_selected_comments", url.Values{"comment_ids": {"A", "B", "C"}})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if ta.fake.CallCount("comments.delete:") != 3 {
			t.Errorf("expected 3 delete calls, got %v", ta.fake.Calls)
		}
		if !strings.Contains(body, "Deleted 2 of 3 comment(s). 1 failed") {
			t.Errorf("expected notice, got %s", body)
		}
		if ta.fake.CallCount("activities.list") == 0 {
			t.Error("expected comments to be re-listed")
		}
	})

	t.Run("bulk unlike", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		_, body := ta.postForm("/delete_selected_likes", url.Values{"video_ids": {"v1", "v2"}})
		if ta.fake.Ratings["v1"] != "none" || ta.fake.Ratings["v2"] != "none" {
			t.Errorf("expected ratings reset, got %v", ta.fake.Ratings)
		}
		if !strings.Contains(body, "Removed 2 of 2 like(s).") {
			t.Errorf("expected notice, got %s", body)
		}
	})

	t.Run("saved exclusion deletes nothing", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.PlaylistPages = [][]*youtube.Playlist{{tu.NewPlaylist("PL1", "Hide me"), tu.NewPlaylist("PL2", "Keep me")}}

		_, body := ta.postForm("/delete_selected_saved", url.Values{"playlist_ids": {"PL1"}})
		if strings.Contains(body, "Hide me") || !strings.Contains(body, "Keep me") {
			t.Errorf("expected only PL2, got %s", body)
		}
		for _, c := range ta.fake.Calls {
			if !strings.HasPrefix(c, "playlists.list") {
				t.Errorf("unexpected call %s", c)
			}
		}
	})

	t.Run("empty selection", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		_, body := ta.postForm("/delete_selected_comments", url.Values{})
		if !strings.Contains(body, "Nothing was selected.") {
			t.Errorf("expected notice, got %s", body)
		}
	})
}

func uploadRequest(t *testing.T, base, filename, title string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("video_file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte("fake video"))
	}
	mw.WriteField("title", title)
	mw.WriteField("description", "A description")
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, base+"/upload_video", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	t.Run("form", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		_, body := ta.get("/upload_video", false)
		if !strings.Contains(body, `accept=".mp4,.avi,.mov,.wmv"`) || !strings.Contains(body, "published as public") {
			t.Errorf("unexpected form %s", body)
		}
	})

	t.Run("successful upload", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()

		resp, _ := ta.do(uploadRequest(t, ta.server.URL, "holiday clip.mp4", "Holiday"))
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/upload_video" {
			t.Fatalf("expected redirect back to the form, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
		}
		if ta.fake.CallCount("videos.insert") != 1 || ta.fake.InsertedBody[0] != "fake video" {
			t.Errorf("expected one upload with the file contents, got %v", ta.fake.Calls)
		}
		if ta.fake.Inserted[0].Snippet.Title != "Holiday" {
			t.Errorf("unexpected title %s", ta.fake.Inserted[0].Snippet.Title)
		}

		entries, _ := os.ReadDir(ta.config.Upload.Dir)
		if len(entries) != 0 {
			t.Errorf("expected saved upload to be removed, found %d files", len(entries))
		}

		_, body := ta.get("/upload_video", false)
		if !strings.Contains(body, "Video successfully uploaded to YouTube (id uploaded-1)") {
			t.Errorf("expected success flash, got %s", body)
		}
	})

	tc := []struct {
		name     string
		filename string
		title    string
		flash    string
	}{
		{name: "disallowed extension", filename: "notes.txt", title: "T", flash: "Invalid video file"},
		{name: "missing file", filename: "", title: "T", flash: "No file part"},
		{name: "missing title", filename: "clip.mp4", title: "", flash: "Invalid title"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, nil)
			ta.login()

			resp, _ := ta.do(uploadRequest(t, ta.server.URL, tt.filename, tt.title))
			if resp.Header.Get("Location") != "/upload_video" {
				t.Errorf("expected redirect to the form, got %s", resp.Header.Get("Location"))
			}
			if ta.fake.CallCount("videos.insert") != 0 {
				t.Error("expected no upload call")
			}

			_, body := ta.get("/upload_video", false)
			if !strings.Contains(body, tt.flash) {
				t.Errorf("expected flash %q, got %s", tt.flash, body)
			}
		})
	}

	t.Run("remote failure", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.login()
		ta.fake.Errors["videos.insert"] = &shared.RemoteAPIError{Op: "videos.insert", StatusCode: 503, Err: errors.New("unavailable")}

		ta.do(uploadRequest(t, ta.server.URL, "clip.mov", "T"))

		_, body := ta.get("/upload_video", false)
		if !strings.Contains(body, "Upload to YouTube failed") {
			t.Errorf("expected failure flash, got %s", body)
		}
	})
}
