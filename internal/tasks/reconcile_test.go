package tasks

import (
	"context"
	"testing"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftPolicy(t *testing.T) {
	tests := []struct {
		input string
		want  ShiftPolicy
	}{
		{"", ShiftHead},
		{"head", ShiftHead},
		{"legacy", ShiftLegacy},
	}
	for _, tt := range tests {
		got, err := ParseShiftPolicy(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		if tt.input != "" {
			assert.Equal(t, tt.input, got.String())
		}
	}

	_, err := ParseShiftPolicy("tail")
	assert.ErrorIs(t, err, shared.ErrInvalidConfig)

	assert.Equal(t, 0, ShiftHead.Threshold(2))
	assert.Equal(t, 1, ShiftLegacy.Threshold(2))
	assert.Equal(t, 0, ShiftLegacy.Threshold(1))
	assert.Equal(t, 0, ShiftLegacy.Threshold(0))
}

// archiveFive archives PL1 with a..e at positions 0..4.
func archiveFive(t *testing.T, env *testEnv) {
	t.Helper()
	env.source.SetPlaylist("PL1", "Mix", "etag-1", "a", "b", "c", "d", "e")
	res, err := env.archiver.ArchivePlaylist(context.Background(), "PL1", nil)
	require.NoError(t, err)
	require.Equal(t, models.ModeFull, res.Mode)
	require.Equal(t, 5, res.ItemsAdded)
}

func TestReconcileTop(t *testing.T) {
	ctx := context.Background()

	t.Run("head policy shifts every stored item", func(t *testing.T) {
		env := newTestEnv(t, ShiftHead)
		archiveFive(t, env)

		env.source.Prepend("PL1", "etag-2", "x", "y")
		res, err := env.archiver.ArchivePlaylist(ctx, "PL1", nil)
		require.NoError(t, err)
		assert.Equal(t, models.ModeIncremental, res.Mode)
		assert.Equal(t, 2, res.ItemsAdded)

		positions := env.positions(t, "PL1")
		assert.Equal(t, map[string]int{"x": 0, "y": 1, "a": 2, "b": 3, "c": 4, "d": 5, "e": 6}, positions)
		requireContiguous(t, positions)
	})

	t.Run("legacy policy keeps the documented threshold", func(t *testing.T) {
		env := newTestEnv(t, ShiftLegacy)
		archiveFive(t, env)

		env.source.Prepend("PL1", "etag-2", "x", "y")
		res, err := env.archiver.ArchivePlaylist(ctx, "PL1", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.ItemsAdded)

		assert.Equal(t,
			map[string]int{"x": 0, "y": 1, "a": 0, "b": 3, "c": 4, "d": 5, "e": 6},
			env.positions(t, "PL1"),
		)
	})

	t.Run("legacy and head agree for a single new item", func(t *testing.T) {
		env := newTestEnv(t, ShiftLegacy)
		archiveFive(t, env)

		env.source.Prepend("PL1", "etag-2", "x")
		_, err := env.archiver.ArchivePlaylist(ctx, "PL1", nil)
		require.NoError(t, err)
		requireContiguous(t, env.positions(t, "PL1"))
	})

	t.Run("all items new", func(t *testing.T) {
		env := newTestEnv(t, ShiftHead)
		archiveFive(t, env)

		env.source.SetPlaylist("PL1", "Mix", "etag-2", "p", "q", "r")
		res, err := env.archiver.ArchivePlaylist(ctx, "PL1", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, res.ItemsAdded)

		positions := env.positions(t, "PL1")
		assert.Len(t, positions, 8)
		assert.Equal(t, 0, positions["p"])
		assert.Equal(t, 2, positions["r"])
		assert.Equal(t, 3, positions["a"])
		requireContiguous(t, positions)
	})

	t.Run("changed token without new items", func(t *testing.T) {
		env := newTestEnv(t, ShiftHead)
		archiveFive(t, env)

		env.source.Playlists["PL1"].Token = "etag-2"
		res, err := env.archiver.ArchivePlaylist(ctx, "PL1", nil)
		require.NoError(t, err)
		assert.Equal(t, models.ModeIncremental, res.Mode)
		assert.Zero(t, res.ItemsAdded)

		token, _, err := env.repo.StoredFreshnessToken(ctx, "PL1")
		require.NoError(t, err)
		assert.Equal(t, "etag-2", token)
		requireContiguous(t, env.positions(t, "PL1"))
	})

	t.Run("repeated video before the first known item is archived once", func(t *testing.T) {
		env := newTestEnv(t, ShiftHead)
		archiveFive(t, env)

		env.source.Prepend("PL1", "etag-2", "x", "x", "y")
		res, err := env.archiver.ArchivePlaylist(ctx, "PL1", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.ItemsAdded)
		requireContiguous(t, env.positions(t, "PL1"))
	})

	t.Run("stops at the first archived item", func(t *testing.T) {
		env := newTestEnv(t, ShiftHead)
		archiveFive(t, env)

		env.source.Prepend("PL1", "etag-2", "x")
		env.source.Calls = 0
		env.source.PageSizes = nil

		_, err := env.archiver.ArchivePlaylist(ctx, "PL1", nil)
		require.NoError(t, err)
		// one freshness request and one page; "a" sits on the first page
		assert.Equal(t, 2, env.source.Calls)
	})

	t.Run("existing video keeps its attributes", func(t *testing.T) {
		env := newTestEnv(t, ShiftHead)
		archiveFive(t, env)
		env.source.SetPlaylist("PL2", "Other", "etag-1", "z")
		_, err := env.archiver.ArchivePlaylist(ctx, "PL2", nil)
		require.NoError(t, err)

		env.source.Prepend("PL2", "etag-2", "a")
		env.source.Playlists["PL2"].Items[0].Title = "Renamed"
		_, err = env.archiver.ArchivePlaylist(ctx, "PL2", nil)
		require.NoError(t, err)

		entries, err := env.repo.ListItems(ctx, "PL2", models.Ascending)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].VideoID)
		assert.Equal(t, "Video a", entries[0].Title)
	})
}
