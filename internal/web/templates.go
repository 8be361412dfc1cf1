package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/desertthunder/ytdash/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index", "dashboard", "videos", "comments", "likes", "saved", "upload"}

var funcs = template.FuncMap{
	"truncate": func(s string, n int) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n]) + "…"
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
}

// Page is the data every template receives.
type Page struct {
	Title    string
	LoggedIn bool
	Flashes  []string
	// Warning is shown when a listing is incomplete.
	Warning string
	// Notice summarizes the outcome of a selection operation.
	Notice string

	Videos    []models.VideoSummary
	Comments  []models.CommentSummary
	Playlists []models.PlaylistSummary

	Accept  string
	Allowed string
	Privacy string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the layout and shared partials.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/banners.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page name. HTMX requests get the bare content block; full page loads get the layout around it.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data Page) error {
	t, ok := rd.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	block := "layout"
	if isHTMX(r) {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
