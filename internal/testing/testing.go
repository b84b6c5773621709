// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"testing"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/services"
	"github.com/desertthunder/ytarchive/internal/shared"
)

// FakePlaylist is a remote playlist served by [FakeSource].
type FakePlaylist struct {
	Title string
	Token string
	Items []models.SourceItem
}

// FakeSource is an in-memory [services.PlaylistSource].
//
// Continuation tokens are item offsets. FailOnCall makes the n-th ListPage call (1-based) return Err.
type FakeSource struct {
	Playlists   map[string]*FakePlaylist
	FailOnCall  int
	Err         error
	MetadataErr error
	Calls       int
	PageSizes   []int
}

func NewFakeSource() *FakeSource {
	return &FakeSource{Playlists: map[string]*FakePlaylist{}}
}

// SetPlaylist replaces a playlist with public videos titled "Video <id>".
func (f *FakeSource) SetPlaylist(playlistID, title, token string, videoIDs ...string) {
	f.Playlists[playlistID] = &FakePlaylist{Title: title, Token: token, Items: sourceItems(videoIDs)}
}

// Prepend adds videos at the head of a playlist and changes its token.
func (f *FakeSource) Prepend(playlistID, token string, videoIDs ...string) {
	pl := f.Playlists[playlistID]
	pl.Items = append(sourceItems(videoIDs), pl.Items...)
	pl.Token = token
}

func sourceItems(videoIDs []string) []models.SourceItem {
	items := make([]models.SourceItem, len(videoIDs))
	for i, id := range videoIDs {
		items[i] = models.SourceItem{VideoID: id, Title: "Video " + id, PrivacyStatus: "public"}
	}
	return items
}

func (f *FakeSource) Name() string { return "fake" }

func (f *FakeSource) ListPage(ctx context.Context, playlistID string, maxItems int, continuation string) (*services.Page, error) {
	f.Calls++
	f.PageSizes = append(f.PageSizes, maxItems)

	if f.FailOnCall > 0 && f.Calls == f.FailOnCall {
		if f.Err != nil {
			return nil, f.Err
		}
		return nil, fmt.Errorf("%w: call %d failed", shared.ErrSourceUnavailable, f.Calls)
	}

	pl, ok := f.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	start := 0
	if continuation != "" {
		n, err := strconv.Atoi(continuation)
		if err != nil {
			return nil, fmt.Errorf("invalid continuation %q", continuation)
		}
		start = n
	}
	end := min(start+maxItems, len(pl.Items))
	start = min(start, end)

	page := &services.Page{FreshnessToken: pl.Token}
	for i := start; i < end; i++ {
		item := pl.Items[i]
		item.Position = i
		page.Items = append(page.Items, item)
	}
	if end < len(pl.Items) {
		page.NextContinuation = strconv.Itoa(end)
	}
	return page, nil
}

func (f *FakeSource) GetMetadata(ctx context.Context, playlistID string) (*services.Metadata, error) {
	if f.MetadataErr != nil {
		return nil, f.MetadataErr
	}
	pl, ok := f.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return &services.Metadata{Title: pl.Title}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
