package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
)

const partialWarning = "Some items could not be loaded from YouTube; the list below may be incomplete."

// Index renders the landing page.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, "index", a.page(w, r, "Home"))
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	_, err := a.tokens.Bundle(r)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"authenticated": err == nil,
	})
}

// Login stores a fresh state in the session and redirects to the Google consent page.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		a.logger.Error("failed to generate state", "error", err)
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	if err := a.tokens.SetState(w, r, state); err != nil {
		a.logger.Error("failed to store state", "error", err)
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, a.auth.GetAuthURL(state), http.StatusFound)
}

// Authorized completes the OAuth flow: it verifies the state, exchanges the code and stores the token bundle.
func (a *App) Authorized(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	expected, err := a.tokens.TakeState(w, r)
	if err != nil || expected == "" || query.Get("state") != expected {
		a.logger.Warn("rejected OAuth callback", "error", shared.ErrInvalidState)
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if e := query.Get("error"); e != "" {
		a.logger.Warn("authorization denied", "error", e, "description", query.Get("error_description"))
		a.tokens.Flash(w, r, "Sign-in was cancelled.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	bundle, err := a.auth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		a.logger.Error("token exchange failed", "error", err)
		a.tokens.Flash(w, r, "Sign-in failed, please try again.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := a.tokens.Store(w, r, bundle); err != nil {
		a.logger.Error("failed to store token bundle", "error", err)
		http.Error(w, "Failed to store session", http.StatusInternalServerError)
		return
	}

	a.logger.Info("signed in", "refreshable", bundle.RefreshToken != "")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout clears the token bundle.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.tokens.Clear(w, r); err != nil {
		a.logger.Warn("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Dashboard renders the layout that loads the listings as partials.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, "dashboard", a.page(w, r, "Dashboard"))
}

func (a *App) MyVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := accountFrom(r.Context()).ops.Videos(r.Context())
	a.renderVideos(w, r, "videos", "My videos", videos, err, "")
}

func (a *App) MyComments(w http.ResponseWriter, r *http.Request) {
	comments, err := accountFrom(r.Context()).ops.Comments(r.Context())
	a.renderComments(w, r, comments, err, "")
}

func (a *App) MyLikes(w http.ResponseWriter, r *http.Request) {
	likes, err := accountFrom(r.Context()).ops.Likes(r.Context())
	a.renderVideos(w, r, "likes", "My likes", likes, err, "")
}

func (a *App) MySaved(w http.ResponseWriter, r *http.Request) {
	saved, err := accountFrom(r.Context()).ops.Saved(r.Context())
	a.renderSaved(w, r, saved, err, "")
}

// DeleteComment deletes one comment and returns to the comment list. A failure leaves the comment in place.
func (a *App) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := accountFrom(r.Context()).ops.DeleteComment(r.Context(), id); err != nil {
		if a.handleAuthError(w, r, err) {
			return
		}
		a.tokens.Flash(w, r, fmt.Sprintf("Could not delete comment %s.", id))
	} else {
		a.tokens.Flash(w, r, "Comment deleted.")
	}
	http.Redirect(w, r, "/my_comments", http.StatusFound)
}

// DeleteSelectedComments deletes every checked comment, then re-lists.
func (a *App) DeleteSelectedComments(w http.ResponseWriter, r *http.Request) {
	ids, ok := a.formIDs(w, r, "comment_ids")
	if !ok {
		return
	}

	ops := accountFrom(r.Context()).ops
	result := ops.DeleteSelectedComments(r.Context(), ids, nil)
	if a.handleAuthError(w, r, result.Err()) {
		return
	}

	comments, err := ops.Comments(r.Context())
	a.renderComments(w, r, comments, err, bulkNotice("Deleted", "comment", result))
}

// DeleteSelectedLikes removes the like from every checked video, then re-lists.
func (a *App) DeleteSelectedLikes(w http.ResponseWriter, r *http.Request) {
	ids, ok := a.formIDs(w, r, "video_ids")
	if !ok {
		return
	}

	ops := accountFrom(r.Context()).ops
	result := ops.RemoveSelectedLikes(r.Context(), ids, nil)
	if a.handleAuthError(w, r, result.Err()) {
		return
	}

	likes, err := ops.Likes(r.Context())
	a.renderVideos(w, r, "likes", "My likes", likes, err, bulkNotice("Removed", "like", result))
}

// DeleteSelectedSaved hides the checked playlists from the re-listed view. Nothing is deleted on YouTube.
func (a *App) DeleteSelectedSaved(w http.ResponseWriter, r *http.Request) {
	ids, ok := a.formIDs(w, r, "playlist_ids")
	if !ok {
		return
	}

	saved, err := accountFrom(r.Context()).ops.ExcludeSelectedSaved(r.Context(), ids)
	notice := ""
	if len(ids) > 0 {
		notice = fmt.Sprintf("Hid %d playlist(s) from this view; they were not deleted on YouTube.", len(ids))
	}
	a.renderSaved(w, r, saved, err, notice)
}

// UploadForm renders the upload form.
func (a *App) UploadForm(w http.ResponseWriter, r *http.Request) {
	page := a.page(w, r, "Upload")
	policy := a.config.Upload
	accept := make([]string, 0, len(policy.AllowedExtensions))
	for _, ext := range policy.AllowedExtensions {
		accept = append(accept, "."+ext)
	}
	page.Accept = strings.Join(accept, ",")
	page.Allowed = strings.Join(policy.AllowedExtensions, ", ")
	page.Privacy = policy.Privacy
	a.render(w, r, "upload", page)
}

// UploadVideo saves the submitted file, uploads it and reports the outcome as a flash message.
//
// The saved copy is removed once the upload returns.
func (a *App) UploadVideo(w http.ResponseWriter, r *http.Request) {
	policy := a.config.Upload
	if policy.MaxFormMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, policy.MaxFormMB<<20)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		a.logger.Warn("failed to parse upload form", "error", err)
		a.uploadFailed(w, r, "The upload could not be read; the file may be too large.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video_file")
	if errors.Is(err, http.ErrMissingFile) {
		a.uploadFailed(w, r, "No file part")
		return
	}
	if err != nil {
		a.uploadFailed(w, r, "The upload could not be read.")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		a.uploadFailed(w, r, "No selected file")
		return
	}

	req := models.UploadRequest{
		Path:        header.Filename,
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
	}
	if err := tasks.ValidateUpload(req, policy); err != nil {
		a.uploadFailed(w, r, validationMessage(err))
		return
	}

	path, err := tasks.SaveUpload(policy.Dir, header.Filename, file, policy.AllowedExtensions)
	if err != nil {
		a.logger.Error("failed to save upload", "file", header.Filename, "error", err)
		a.uploadFailed(w, r, validationMessage(err))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			a.logger.Warn("failed to remove upload", "path", path, "error", err)
		}
	}()

	req.Path = path
	result, err := accountFrom(r.Context()).ops.Upload(r.Context(), req, nil)
	if err != nil {
		if a.handleAuthError(w, r, err) {
			return
		}
		a.uploadFailed(w, r, "Upload to YouTube failed, please try again.")
		return
	}

	a.tokens.Flash(w, r, fmt.Sprintf("Video successfully uploaded to YouTube (id %s)", result.VideoID))
	http.Redirect(w, r, "/upload_video", http.StatusSeeOther)
}

func (a *App) uploadFailed(w http.ResponseWriter, r *http.Request, msg string) {
	a.tokens.Flash(w, r, msg)
	http.Redirect(w, r, "/upload_video", http.StatusSeeOther)
}

func validationMessage(err error) string {
	var vErr *shared.ValidationError
	if errors.As(err, &vErr) {
		return fmt.Sprintf("Invalid %s: %s", strings.ReplaceAll(vErr.Field, "_", " "), vErr.Reason)
	}
	return "The file could not be saved."
}

func (a *App) formIDs(w http.ResponseWriter, r *http.Request, field string) ([]string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return nil, false
	}
	return r.PostForm[field], true
}

func bulkNotice(verb, noun string, result tasks.BulkResult) string {
	if len(result.Attempted) == 0 {
		return "Nothing was selected."
	}
	msg := fmt.Sprintf("%s %d of %d %s(s).", verb, len(result.Succeeded()), len(result.Attempted), noun)
	if len(result.Failed) > 0 {
		msg += fmt.Sprintf(" %d failed and were left in place.", len(result.Failed))
	}
	return msg
}

func (a *App) renderVideos(w http.ResponseWriter, r *http.Request, name, title string, videos []models.VideoSummary, err error, notice string) {
	if a.handleAuthError(w, r, err) {
		return
	}
	page := a.page(w, r, title)
	page.Videos = videos
	page.Notice = notice
	if err != nil {
		page.Warning = partialWarning
	}
	a.render(w, r, name, page)
}

func (a *App) renderComments(w http.ResponseWriter, r *http.Request, comments []models.CommentSummary, err error, notice string) {
	if a.handleAuthError(w, r, err) {
		return
	}
	page := a.page(w, r, "My comments")
	page.Comments = comments
	page.Notice = notice
	if err != nil {
		page.Warning = partialWarning
	}
	a.render(w, r, "comments", page)
}

func (a *App) renderSaved(w http.ResponseWriter, r *http.Request, saved []models.PlaylistSummary, err error, notice string) {
	if a.handleAuthError(w, r, err) {
		return
	}
	page := a.page(w, r, "My playlists")
	page.Playlists = saved
	page.Notice = notice
	if err != nil {
		page.Warning = partialWarning
	}
	a.render(w, r, "saved", page)
}

func (a *App) page(w http.ResponseWriter, r *http.Request, title string) Page {
	_, err := a.tokens.Bundle(r)
	return Page{
		Title:    title,
		LoggedIn: err == nil,
		Flashes:  a.tokens.Flashes(w, r),
	}
}

func (a *App) render(w http.ResponseWriter, r *http.Request, name string, page Page) {
	if err := a.views.Render(w, r, http.StatusOK, name, page); err != nil {
		a.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
