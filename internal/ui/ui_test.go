package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	models.ArchiveReader
	playlists []models.Playlist
	entries   map[string][]models.Entry
	err       error
}

func (f *fakeReader) ListPlaylists(context.Context) ([]models.Playlist, error) {
	return f.playlists, f.err
}

func (f *fakeReader) ListItems(_ context.Context, playlistID string, order models.Order) ([]models.Entry, error) {
	entries := append([]models.Entry(nil), f.entries[playlistID]...)
	if order == models.Descending {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, nil
}

func newReader() *fakeReader {
	entry := func(id string, pos int, title string) models.Entry {
		return models.Entry{PlaylistItem: models.PlaylistItem{PlaylistID: "PL1", VideoID: id, Position: pos}, Title: title}
	}
	return &fakeReader{
		playlists: []models.Playlist{{ID: "PL1", Title: "Road Trip", ItemCount: 2}},
		entries: map[string][]models.Entry{
			"PL1": {entry("v1", 0, "First Song"), entry("v2", 1, "Second Song")},
		},
	}
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel(t *testing.T) {
	ctx := context.Background()

	t.Run("browse playlists and items", func(t *testing.T) {
		m := NewModel(ctx, newReader(), nil)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
		run(t, m, m.Init())

		require.Len(t, m.playlists, 1)
		assert.Contains(t, m.View(), "Road Trip")

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)
		assert.Equal(t, ItemListView, m.view)
		require.Len(t, m.itemList.Items(), 2)
		assert.Equal(t, "v1", m.itemList.Items()[0].(entryItem).entry.VideoID)

		_, cmd = m.Update(keyPress("o"))
		run(t, m, cmd)
		assert.Equal(t, models.Descending, m.order)
		assert.Equal(t, "v2", m.itemList.Items()[0].(entryItem).entry.VideoID)

		m.Update(keyPress("esc"))
		assert.Equal(t, PlaylistListView, m.view)
	})

	t.Run("archive key needs an archiver", func(t *testing.T) {
		m := NewModel(ctx, newReader(), nil)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
		run(t, m, m.Init())
		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)

		m.Update(keyPress("a"))
		assert.Equal(t, ItemListView, m.view)
	})

	t.Run("load failure is shown", func(t *testing.T) {
		m := NewModel(ctx, &fakeReader{err: errors.New("disk gone")}, nil)
		run(t, m, m.Init())
		assert.Contains(t, m.View(), "disk gone")

		_, cmd := m.Update(keyPress("q"))
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})

	t.Run("empty archive", func(t *testing.T) {
		m := NewModel(ctx, &fakeReader{}, nil)
		run(t, m, m.Init())
		assert.Contains(t, m.View(), "No playlists archived yet")
	})
}

func TestSimilarityFilter(t *testing.T) {
	targets := []string{"Bohemian Rhapsody", "Under Pressure", "Rhapsody in Blue"}

	ranks := similarityFilter("rhapsody", targets)
	require.Len(t, ranks, 2)
	assert.Equal(t, 0, ranks[0].Index)
	assert.Equal(t, 2, ranks[1].Index)
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16}, ranks[0].MatchedIndexes)

	assert.Empty(t, similarityFilter("zzzz", targets))
}
