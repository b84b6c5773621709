package search

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntries struct {
	entries []models.Entry
	err     error
}

func (f *fakeEntries) ListEntries(_ context.Context, playlistID string) ([]models.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Entry
	for _, e := range f.entries {
		if playlistID == "" || e.PlaylistID == playlistID {
			out = append(out, e)
		}
	}
	return out, nil
}

func entry(playlistID, videoID string, position int, title string) models.Entry {
	return models.Entry{
		PlaylistItem: models.PlaylistItem{PlaylistID: playlistID, VideoID: videoID, Position: position},
		Title:        title,
	}
}

func archive() *fakeEntries {
	return &fakeEntries{entries: []models.Entry{
		entry("PL1", "v1", 0, "Bohemian Rhapsody"),
		entry("PL1", "v2", 1, "Under Pressure"),
		entry("PL1", "v3", 2, "Bohemian Like You"),
		entry("PL2", "v4", 0, "Rhapsody in Blue"),
		entry("PL2", "v1", 1, "Bohemian Rhapsody"),
	}}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "apple", b: "apple", want: 1},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "one empty", a: "apple", b: "", want: 0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
		{name: "one substitution", a: "abcd", b: "abce", want: 0.75},
		{name: "shifted", a: "abcd", b: "bcde", want: 0.75},
		{name: "split blocks", a: "abxcd", b: "abcd", want: 8.0 / 9.0},
		{name: "multibyte runes", a: "日本語", b: "日本", want: 0.8},
		{name: "case folded", a: "Under Pressure", b: "under pressure", want: 1},
		{name: "diacritics stripped", a: "Café Tacvba", b: "cafe tacvba", want: 1},
		{name: "whitespace collapsed", a: "  two   words ", b: "two words", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}

	t.Run("symmetric bounds", func(t *testing.T) {
		s := Similarity("hello", "yellow")
		assert.InDelta(t, 8.0/11.0, s, 1e-9)
		assert.InDelta(t, s, Similarity("yellow", "hello"), 1e-9)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("best match first", func(t *testing.T) {
		s := New(archive(), nil)
		matches, err := s.Search(ctx, "bohemian rapsody", DefaultOptions())
		require.NoError(t, err)
		require.NotEmpty(t, matches)

		assert.Equal(t, "Bohemian Rhapsody", matches[0].Title)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
		}
		for _, m := range matches {
			assert.GreaterOrEqual(t, m.Score, DefaultCutoff)
		}
	})

	t.Run("nothing above the cutoff", func(t *testing.T) {
		s := New(archive(), nil)
		matches, err := s.Search(ctx, "zzzz", DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("higher cutoff narrows results", func(t *testing.T) {
		s := New(archive(), nil)
		matches, err := s.Search(ctx, "bohemian rapsody", Options{Limit: 10, Cutoff: 0.9})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "PL1", matches[0].PlaylistID)
		assert.Equal(t, "PL2", matches[1].PlaylistID)
		assert.Equal(t, matches[0].Score, matches[1].Score)
	})

	t.Run("limit caps results", func(t *testing.T) {
		s := New(archive(), nil)
		matches, err := s.Search(ctx, "bohemian", Options{Limit: 1, Cutoff: 0})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Contains(t, matches[0].Title, "Bohemian")
	})

	t.Run("zero cutoff returns every candidate", func(t *testing.T) {
		s := New(archive(), nil)
		matches, err := s.Search(ctx, "zzzz", Options{Limit: 10, Cutoff: 0})
		require.NoError(t, err)
		assert.Len(t, matches, 5)
	})

	t.Run("scoped to a playlist", func(t *testing.T) {
		s := New(archive(), nil)
		matches, err := s.Search(ctx, "rhapsody", Options{PlaylistID: "PL2", Limit: 10, Cutoff: 0.3})
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		for _, m := range matches {
			assert.Equal(t, "PL2", m.PlaylistID)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		s := New(archive(), nil)

		_, err := s.Search(ctx, "x", Options{Limit: 0, Cutoff: 0.5})
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)

		_, err = s.Search(ctx, "x", Options{Limit: 3, Cutoff: 1.5})
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)

		_, err = s.Search(ctx, "   ", DefaultOptions())
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("store failure", func(t *testing.T) {
		s := New(&fakeEntries{err: errors.New("boom")}, nil)
		_, err := s.Search(ctx, "x", DefaultOptions())
		assert.Error(t, err)
	})
}

func TestOptionsFromConfig(t *testing.T) {
	assert.Equal(t, DefaultOptions(), OptionsFromConfig(shared.SearchConfig{}))
	high, zero := 0.8, 0.0
	assert.Equal(t, Options{Limit: 3, Cutoff: 0.8}, OptionsFromConfig(shared.SearchConfig{Limit: 3, Cutoff: &high}))
	assert.Equal(t, Options{Limit: DefaultLimit, Cutoff: 0}, OptionsFromConfig(shared.SearchConfig{Cutoff: &zero}))
}
