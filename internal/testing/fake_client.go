package testing

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/ytdash/internal/services"
	"golang.org/x/oauth2"
	"google.golang.org/api/youtube/v3"
)

var _ services.Client = (*FakeClient)(nil)

// FakeClient is an in-memory [services.Client].
//
// Listings are served from page fixtures: cursor "" is page 0 and each page but the last
// carries cursor "p<n>" to the next one. Errors are keyed by "<op>:<id>" for mutations and
// "<op>#<page>" (or "<op>:<id>#<page>") for listings.
type FakeClient struct {
	mu sync.Mutex

	ChannelResult *youtube.Channel
	ChannelErr    error

	PlaylistItemPages  map[string][][]*youtube.PlaylistItem
	ActivityPages      [][]*youtube.Activity
	CommentThreadPages map[string][][]*youtube.CommentThread
	PlaylistPages      [][]*youtube.Playlist

	InsertResult *youtube.Video
	Inserted     []*youtube.Video
	InsertedBody []string

	Errors  map[string]error
	Calls   []string
	Ratings map[string]string
	Deleted []string

	Tok *oauth2.Token
}

// NewFakeClient returns a FakeClient for the channel UC-owner with uploads playlist UU-owner and likes playlist LL-owner.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		ChannelResult:      NewChannel("UC-owner", "UU-owner", "LL-owner"),
		PlaylistItemPages:  map[string][][]*youtube.PlaylistItem{},
		CommentThreadPages: map[string][][]*youtube.CommentThread{},
		Errors:             map[string]error{},
		Ratings:            map[string]string{},
		Tok:                &oauth2.Token{AccessToken: "fake-token"},
	}
}

// CallCount returns how many recorded calls start with prefix.
func (f *FakeClient) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *FakeClient) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	return f.Errors[call]
}

func (f *FakeClient) Channel(ctx context.Context) (*youtube.Channel, error) {
	if err := f.record("channels.list"); err != nil {
		return nil, err
	}
	if f.ChannelErr != nil {
		return nil, f.ChannelErr
	}
	return f.ChannelResult, nil
}

func (f *FakeClient) PlaylistItems(ctx context.Context, playlistID string, pageSize int64, cursor string) (*youtube.PlaylistItemListResponse, error) {
	i := pageIndex(cursor)
	if err := f.record(fmt.Sprintf("playlistItems.list:%s#%d", playlistID, i)); err != nil {
		return nil, err
	}
	pages := f.PlaylistItemPages[playlistID]
	resp := &youtube.PlaylistItemListResponse{NextPageToken: nextCursor(i, len(pages))}
	if i < len(pages) {
		resp.Items = pages[i]
	}
	return resp, nil
}

func (f *FakeClient) Activities(ctx context.Context, pageSize int64, cursor string) (*youtube.ActivityListResponse, error) {
	i := pageIndex(cursor)
	if err := f.record(fmt.Sprintf("activities.list#%d", i)); err != nil {
		return nil, err
	}
	resp := &youtube.ActivityListResponse{NextPageToken: nextCursor(i, len(f.ActivityPages))}
	if i < len(f.ActivityPages) {
		resp.Items = f.ActivityPages[i]
	}
	return resp, nil
}

func (f *FakeClient) CommentThreads(ctx context.Context, videoID string, pageSize int64, cursor string) (*youtube.CommentThreadListResponse, error) {
	i := pageIndex(cursor)
	if err := f.record(fmt.Sprintf("commentThreads.list:%s#%d", videoID, i)); err != nil {
		return nil, err
	}
	pages := f.CommentThreadPages[videoID]
	resp := &youtube.CommentThreadListResponse{NextPageToken: nextCursor(i, len(pages))}
	if i < len(pages) {
		resp.Items = pages[i]
	}
	return resp, nil
}

func (f *FakeClient) Playlists(ctx context.Context, pageSize int64, cursor string) (*youtube.PlaylistListResponse, error) {
	i := pageIndex(cursor)
	if err := f.record(fmt.Sprintf("playlists.list#%d", i)); err != nil {
		return nil, err
	}
	resp := &youtube.PlaylistListResponse{NextPageToken: nextCursor(i, len(f.PlaylistPages))}
	if i < len(f.PlaylistPages) {
		resp.Items = f.PlaylistPages[i]
	}
	return resp, nil
}

func (f *FakeClient) InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, progress func(current, total int64)) (*youtube.Video, error) {
	if err := f.record("videos.insert"); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(media)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(int64(len(body)), int64(len(body)))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserted = append(f.Inserted, video)
	f.InsertedBody = append(f.InsertedBody, string(body))

	if f.InsertResult != nil {
		return f.InsertResult, nil
	}
	return &youtube.Video{Id: "uploaded-" + strconv.Itoa(len(f.Inserted)), Snippet: video.Snippet, Status: video.Status}, nil
}

func (f *FakeClient) RateVideo(ctx context.Context, videoID, rating string) error {
	if err := f.record("videos.rate:" + videoID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ratings[videoID] = rating
	return nil
}

func (f *FakeClient) DeleteComment(ctx context.Context, commentID string) error {
	if err := f.record("comments.delete:" + commentID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, commentID)
	return nil
}

func (f *FakeClient) Token() (*oauth2.Token, error) {
	return f.Tok, nil
}

func pageIndex(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimPrefix(cursor, "p"))
	return n
}

func nextCursor(i, pages int) string {
	if i+1 < pages {
		return fmt.Sprintf("p%d", i+1)
	}
	return ""
}

// NewChannel builds a channel with its uploads and likes playlists.
func NewChannel(id, uploads, likes string) *youtube.Channel {
	return &youtube.Channel{
		Id: id,
		ContentDetails: &youtube.ChannelContentDetails{
			RelatedPlaylists: &youtube.ChannelContentDetailsRelatedPlaylists{Uploads: uploads, Likes: likes},
		},
	}
}

// NewPlaylistItem builds a playlist item pointing at videoID.
func NewPlaylistItem(videoID, title string) *youtube.PlaylistItem {
	return &youtube.PlaylistItem{
		Id: "item-" + videoID,
		Snippet: &youtube.PlaylistItemSnippet{
			Title:       title,
			Description: title + " description",
			ResourceId:  &youtube.ResourceId{Kind: "youtube#video", VideoId: videoID},
		},
		ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: videoID},
	}
}

// NewUploadActivity builds an upload activity for videoID.
func NewUploadActivity(videoID string) *youtube.Activity {
	return &youtube.Activity{
		ContentDetails: &youtube.ActivityContentDetails{
			Upload: &youtube.ActivityContentDetailsUpload{VideoId: videoID},
		},
	}
}

// NewPlaylistItemActivity builds a "video added to playlist" activity for videoID.
func NewPlaylistItemActivity(videoID string) *youtube.Activity {
	return &youtube.Activity{
		ContentDetails: &youtube.ActivityContentDetails{
			PlaylistItem: &youtube.ActivityContentDetailsPlaylistItem{
				ResourceId: &youtube.ResourceId{Kind: "youtube#video", VideoId: videoID},
			},
		},
	}
}

// NewCommentThread builds a thread whose top-level comment was written by author.
func NewCommentThread(commentID, author, text string) *youtube.CommentThread {
	return &youtube.CommentThread{
		Id: commentID,
		Snippet: &youtube.CommentThreadSnippet{
			TopLevelComment: &youtube.Comment{
				Id: commentID,
				Snippet: &youtube.CommentSnippet{
					AuthorChannelId: &youtube.CommentSnippetAuthorChannelId{Value: author},
					TextOriginal:    text,
					PublishedAt:     "2024-03-01T12:00:00Z",
				},
			},
		},
	}
}

// NewPlaylist builds a playlist owned by the account.
func NewPlaylist(id, title string) *youtube.Playlist {
	return &youtube.Playlist{
		Id:      id,
		Snippet: &youtube.PlaylistSnippet{Title: title, Description: title + " description"},
	}
}
