package ui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/desertthunder/ytdash/internal/tasks"
)

var _ tasks.AccountOperations = (*fakeOps)(nil)

type fakeOps struct {
	mu       sync.Mutex
	videos   []models.VideoSummary
	comments []models.CommentSummary
	saved    []models.PlaylistSummary
	listErr  error
	failIDs  map[string]bool

	deleted  []string
	unliked  []string
	excluded []string
}

func (f *fakeOps) Videos(ctx context.Context) ([]models.VideoSummary, error) {
	return f.videos, f.listErr
}

func (f *fakeOps) Comments(ctx context.Context) ([]models.CommentSummary, error) {
	return f.comments, f.listErr
}

func (f *fakeOps) Likes(ctx context.Context) ([]models.VideoSummary, error) {
	return f.videos, f.listErr
}

func (f *fakeOps) Saved(ctx context.Context) ([]models.PlaylistSummary, error) {
	return f.saved, f.listErr
}

func (f *fakeOps) DeleteComment(ctx context.Context, id string) error { return nil }
func (f *fakeOps) RemoveLike(ctx context.Context, id string) error    { return nil }

func (f *fakeOps) Upload(ctx context.Context, req models.UploadRequest, progress chan<- tasks.ProgressUpdate) (*models.UploadResult, error) {
	return nil, errors.New("upload is not exercised here")
}

func (f *fakeOps) bulk(ids []string, record *[]string, phase tasks.Phase, progress chan<- tasks.ProgressUpdate) tasks.BulkResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := tasks.BulkResult{Failed: map[string]error{}}
	for i, id := range ids {
		result.Attempted = append(result.Attempted, id)
		*record = append(*record, id)
		if f.failIDs[id] {
			result.Failed[id] = errors.New("boom")
		}
		progress <- tasks.ProgressUpdate{Phase: phase, Step: i + 1, Total: len(ids), Message: id}
	}
	return result
}

func (f *fakeOps) DeleteSelectedComments(ctx context.Context, ids []string, progress chan<- tasks.ProgressUpdate) tasks.BulkResult {
	return f.bulk(ids, &f.deleted, tasks.DeleteCommentsPhase, progress)
}

func (f *fakeOps) RemoveSelectedLikes(ctx context.Context, ids []string, progress chan<- tasks.ProgressUpdate) tasks.BulkResult {
	return f.bulk(ids, &f.unliked, tasks.RemoveLikesPhase, progress)
}

func (f *fakeOps) ExcludeSelectedSaved(ctx context.Context, ids []string) ([]models.PlaylistSummary, error) {
	f.excluded = append(f.excluded, ids...)
	return slices.DeleteFunc(slices.Clone(f.saved), func(p models.PlaylistSummary) bool {
		return slices.Contains(ids, p.ID)
	}), nil
}

func newTestModel(ops *fakeOps) *Model {
	m := NewModel(context.Background(), ops, shared.NewLogger(&strings.Builder{}))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// send applies msg and then runs the returned commands until none are left.
func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("too many commands")
		}
		next := cmd()
		if _, ok := next.(Msg); !ok {
			return
		}
		_, cmd = m.Update(next)
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

// openCollection moves the menu cursor down n entries and opens that collection.
func openCollection(t *testing.T, m *Model, n int) {
	t.Helper()
	for range n {
		send(t, m, downKey)
	}
	send(t, m, enterKey)
}

func sampleComments() []models.CommentSummary {
	return []models.CommentSummary{
		{ID: "A", Text: "first", VideoID: "v1"},
		{ID: "B", Text: "second", VideoID: "v1"},
		{ID: "C", Text: "third", VideoID: "v2"},
	}
}

func TestModel(t *testing.T) {
	t.Run("opens a collection from the menu", func(t *testing.T) {
		ops := &fakeOps{videos: []models.VideoSummary{{ID: "v1", Title: "Holiday"}}}
		m := newTestModel(ops)

		if m.view != MenuView {
			t.Fatalf("expected menu view, got %v", m.view)
		}
		openCollection(t, m, 0)

		if m.view != ItemListView || m.collection != Videos {
			t.Fatalf("expected video list, got view %v collection %v", m.view, m.collection)
		}
		if !strings.Contains(m.View(), "Holiday") {
			t.Errorf("expected the video in the view, got %s", m.View())
		}
	})

	t.Run("videos are read only", func(t *testing.T) {
		ops := &fakeOps{videos: []models.VideoSummary{{ID: "v1", Title: "Holiday"}}}
		m := newTestModel(ops)
		openCollection(t, m, 0)

		send(t, m, spaceKey)
		send(t, m, enterKey)
		if m.view != ItemListView {
			t.Errorf("expected to stay on the list, got %v", m.view)
		}
	})

	t.Run("bulk delete of selected comments", func(t *testing.T) {
		ops := &fakeOps{comments: sampleComments(), failIDs: map[string]bool{"C": true}}
		m := newTestModel(ops)
		openCollection(t, m, 1)

		send(t, m, spaceKey)
		send(t, m, downKey)
		send(t, m, downKey)
		send(t, m, spaceKey)

		if got := m.selectedIDs(); !slices.Equal(got, []string{"A", "C"}) {
			t.Fatalf("expected A and C selected, got %v", got)
		}
		if !strings.Contains(m.items.Title, "2 selected") {
			t.Errorf("expected selection count in title, got %s", m.items.Title)
		}

		send(t, m, enterKey)
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Delete 2 selected item(s)?") {
			t.Errorf("unexpected confirm view %s", m.View())
		}

		send(t, m, keyRunes("y"))
		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if !slices.Equal(ops.deleted, []string{"A", "C"}) {
			t.Errorf("expected A and C deleted in order, got %v", ops.deleted)
		}

		view := m.View()
		if !strings.Contains(view, "1 of 2 succeeded") || !strings.Contains(view, "C: boom") {
			t.Errorf("unexpected result view %s", view)
		}
	})

	t.Run("declining the confirmation", func(t *testing.T) {
		ops := &fakeOps{videos: []models.VideoSummary{{ID: "v1", Title: "Liked"}}}
		m := newTestModel(ops)
		openCollection(t, m, 2)

		send(t, m, spaceKey)
		send(t, m, enterKey)
		send(t, m, keyRunes("n"))

		if m.view != ItemListView || len(ops.unliked) != 0 {
			t.Errorf("expected nothing removed, got view %v unliked %v", m.view, ops.unliked)
		}
	})

	t.Run("select all likes", func(t *testing.T) {
		ops := &fakeOps{videos: []models.VideoSummary{{ID: "v1", Title: "One"}, {ID: "v2", Title: "Two"}}}
		m := newTestModel(ops)
		openCollection(t, m, 2)

		send(t, m, keyRunes("a"))
		send(t, m, enterKey)
		send(t, m, keyRunes("y"))

		if !slices.Equal(ops.unliked, []string{"v1", "v2"}) {
			t.Errorf("expected both likes removed, got %v", ops.unliked)
		}
	})

	t.Run("saved playlists are hidden not deleted", func(t *testing.T) {
		ops := &fakeOps{saved: []models.PlaylistSummary{{ID: "PL1", Title: "Hide me"}, {ID: "PL2", Title: "Keep me"}}}
		m := newTestModel(ops)
		openCollection(t, m, 3)

		send(t, m, spaceKey)
		send(t, m, enterKey)
		if !strings.Contains(m.View(), "not deleted on YouTube") {
			t.Errorf("expected the view-only note, got %s", m.View())
		}
		send(t, m, keyRunes("y"))

		if m.view != ItemListView {
			t.Fatalf("expected list view, got %v", m.view)
		}
		if len(m.items.Items()) != 1 || !slices.Equal(ops.excluded, []string{"PL1"}) {
			t.Errorf("expected PL1 hidden, got %d items excluded %v", len(m.items.Items()), ops.excluded)
		}
		if !strings.Contains(m.View(), "Hid 1 playlist(s)") {
			t.Errorf("expected notice, got %s", m.View())
		}
	})

	t.Run("partial listing shows a warning", func(t *testing.T) {
		ops := &fakeOps{
			videos:  []models.VideoSummary{{ID: "v1", Title: "Kept"}},
			listErr: &shared.RemoteAPIError{Op: "playlistItems.list", StatusCode: 500, Err: errors.New("backend")},
		}
		m := newTestModel(ops)
		openCollection(t, m, 0)

		view := m.View()
		if !strings.Contains(view, "may be incomplete") || !strings.Contains(view, "Kept") {
			t.Errorf("expected warning and items, got %s", view)
		}
	})

	t.Run("authentication failure", func(t *testing.T) {
		ops := &fakeOps{listErr: &shared.AuthenticationError{Err: shared.ErrTokenExpired}}
		m := newTestModel(ops)
		openCollection(t, m, 0)

		if !strings.Contains(m.View(), "ytdash auth login") {
			t.Errorf("expected login hint, got %s", m.View())
		}
	})

	t.Run("back to the menu", func(t *testing.T) {
		m := newTestModel(&fakeOps{})
		openCollection(t, m, 0)
		send(t, m, escKey)

		if m.view != MenuView {
			t.Errorf("expected menu view, got %v", m.view)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(&fakeOps{})
		_, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
