// package formatter exports account listings to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
)

// Format names an export format accepted by --format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "text"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatMarkdown, FormatText:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "txt":
		return FormatText, nil
	default:
		return "", &shared.ValidationError{Field: "format", Reason: fmt.Sprintf("must be one of csv, md, text (got %q)", s)}
	}
}

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".csv"
	}
}

// Listing is a titled table of items. The first column of every row is the item id and
// the second its human-readable label.
type Listing struct {
	Title   string
	Headers []string
	Rows    [][]string
	Links   []string
}

// Len returns the number of items in the listing.
func (l *Listing) Len() int {
	return len(l.Rows)
}

// Videos builds a listing of uploads or liked videos.
func Videos(title string, videos []models.VideoSummary) *Listing {
	l := &Listing{Title: title, Headers: []string{"ID", "Title", "Description"}}
	for _, v := range videos {
		l.Rows = append(l.Rows, []string{v.ID, v.Title, v.Description})
		l.Links = append(l.Links, "https://www.youtube.com/watch?v="+v.ID)
	}
	return l
}

// Comments builds a listing of the owner's comments.
func Comments(comments []models.CommentSummary) *Listing {
	l := &Listing{Title: "My comments", Headers: []string{"ID", "Text", "Video", "Published"}}
	for _, c := range comments {
		published := ""
		if !c.PublishedAt.IsZero() {
			published = c.PublishedAt.UTC().Format(time.RFC3339)
		}
		l.Rows = append(l.Rows, []string{c.ID, c.Text, c.VideoID, published})
		l.Links = append(l.Links, "https://www.youtube.com/watch?v="+c.VideoID+"&lc="+c.ID)
	}
	return l
}

// Playlists builds a listing of the account's playlists.
func Playlists(playlists []models.PlaylistSummary) *Listing {
	l := &Listing{Title: "My playlists", Headers: []string{"ID", "Title", "Description"}}
	for _, p := range playlists {
		l.Rows = append(l.Rows, []string{p.ID, p.Title, p.Description})
		l.Links = append(l.Links, "https://www.youtube.com/playlist?list="+p.ID)
	}
	return l
}

// ExportToCSV writes the headers followed by one record per row.
func ExportToCSV(l *Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(l.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range l.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a numbered list of linked labels, with the remaining columns after a dash.
func ExportToMarkdown(l *Listing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", l.Title)
	fmt.Fprintf(&buf, "**Items**: %d\n\n", l.Len())

	if l.Len() == 0 {
		buf.WriteString("_Nothing to show._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Items\n\n")
	for i, row := range l.Rows {
		label := escapeMarkdown(oneLine(row[1], 80))
		if i < len(l.Links) && l.Links[i] != "" {
			label = fmt.Sprintf("[%s](%s)", label, l.Links[i])
		}
		fmt.Fprintf(&buf, "%d. %s", i+1, label)

		var rest []string
		for _, col := range row[2:] {
			if col = oneLine(col, 120); col != "" {
				rest = append(rest, escapeMarkdown(col))
			}
		}
		if len(rest) > 0 {
			fmt.Fprintf(&buf, " - %s", strings.Join(rest, " · "))
		}
		fmt.Fprintf(&buf, " `%s`\n", row[0])
	}

	return buf.Bytes(), nil
}

// ExportToText renders one "label (id)" line per row.
func ExportToText(l *Listing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", l.Title)
	fmt.Fprintf(&buf, "Items: %d\n\n", l.Len())

	for i, row := range l.Rows {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, oneLine(row[1], 80), row[0])
	}

	return buf.Bytes(), nil
}

// Export renders l in format f.
func Export(l *Listing, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(l)
	case FormatMarkdown:
		return ExportToMarkdown(l)
	case FormatText:
		return ExportToText(l)
	default:
		return nil, &shared.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q", f)}
	}
}

// WriteExport renders l in format f and writes it to path.
//
// Defaults to the sanitized listing title with the format's extension in the working directory.
func WriteExport(l *Listing, f Format, path string) (string, error) {
	if path == "" {
		path = shared.SanitizeFilename(strings.ToLower(l.Title)) + f.Extension()
	}

	data, err := Export(l, f)
	if err != nil {
		return "", fmt.Errorf("failed to render export: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
