package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytdash/internal/models"
)

var (
	_ list.Item = collectionItem{}
	_ list.Item = accountItem{}
)

// Collection names one of the account listings the TUI can browse.
type Collection int

const (
	Videos Collection = iota
	Comments
	Likes
	Saved
)

func (c Collection) String() string {
	switch c {
	case Videos:
		return "My videos"
	case Comments:
		return "My comments"
	case Likes:
		return "My likes"
	case Saved:
		return "My playlists"
	default:
		return ""
	}
}

// action is the verb used for the collection's bulk operation, empty when it is read-only.
func (c Collection) action() string {
	switch c {
	case Comments:
		return "Delete"
	case Likes:
		return "Remove the like from"
	case Saved:
		return "Hide"
	default:
		return ""
	}
}

// collectionItem is a menu entry for a [Collection].
type collectionItem struct {
	collection Collection
	desc       string
}

func (i collectionItem) FilterValue() string { return i.collection.String() }
func (i collectionItem) Title() string       { return i.collection.String() }
func (i collectionItem) Description() string { return i.desc }

func menuItems() []list.Item {
	return []list.Item{
		collectionItem{Videos, "Uploads on your channel"},
		collectionItem{Comments, "Your comments on recent activity; delete in bulk"},
		collectionItem{Likes, "Videos you liked; remove likes in bulk"},
		collectionItem{Saved, "Your playlists; hide them from this view"},
	}
}

// accountItem wraps a listing entry to implement [list.Item] with a selection mark.
type accountItem struct {
	id       string
	title    string
	desc     string
	selected bool
}

func (i accountItem) FilterValue() string { return i.title }
func (i accountItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.title)
}
func (i accountItem) Description() string { return i.desc }

func videoItems(videos []models.VideoSummary) []list.Item {
	items := make([]list.Item, len(videos))
	for i, v := range videos {
		items[i] = accountItem{id: v.ID, title: v.Title, desc: v.Description}
	}
	return items
}

func commentItems(comments []models.CommentSummary) []list.Item {
	items := make([]list.Item, len(comments))
	for i, c := range comments {
		desc := fmt.Sprintf("on %s", c.VideoID)
		if !c.PublishedAt.IsZero() {
			desc = fmt.Sprintf("%s • %s", desc, c.PublishedAt.Format("2006-01-02"))
		}
		items[i] = accountItem{id: c.ID, title: c.Text, desc: desc}
	}
	return items
}

func playlistItems(playlists []models.PlaylistSummary) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = accountItem{id: p.ID, title: p.Title, desc: p.Description}
	}
	return items
}
