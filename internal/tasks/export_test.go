package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/ytarchive/internal/formatter"
	"github.com/desertthunder/ytarchive/internal/shared"
	tu "github.com/desertthunder/ytarchive/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"", FormatCSV, FormatMarkdown, FormatText, FormatJSON} {
		assert.True(t, ValidFormat(f), f)
	}
	assert.False(t, ValidFormat("xml"))
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ShiftHead)
	archiveFive(t, env)

	t.Run("csv by default", func(t *testing.T) {
		dir := t.TempDir()
		res, err := env.archiver.Export(ctx, "PL1", ExportOpts{OutputDir: dir})
		require.NoError(t, err)
		require.Len(t, res.Files, 2)
		for _, f := range res.Files {
			tu.AssertFileExists(t, f)
		}

		export, err := formatter.ReadCSVExport(res.Files[0])
		require.NoError(t, err)
		assert.Equal(t, "PL1", export.Playlist.ID)
		assert.Len(t, export.Entries, 5)
	})

	t.Run("other formats write one file", func(t *testing.T) {
		for _, format := range []string{FormatMarkdown, FormatText, FormatJSON} {
			dir := t.TempDir()
			res, err := env.archiver.Export(ctx, "PL1", ExportOpts{Format: format, OutputDir: dir})
			require.NoError(t, err, format)
			require.Len(t, res.Files, 1, format)
			tu.AssertFileExists(t, res.Files[0])
		}
	})

	t.Run("creates the output directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		_, err := env.archiver.Export(ctx, "PL1", ExportOpts{OutputDir: dir})
		require.NoError(t, err)
		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := env.archiver.Export(ctx, "PL1", ExportOpts{Format: "xml", OutputDir: t.TempDir()})
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})

	t.Run("unknown playlist", func(t *testing.T) {
		_, err := env.archiver.Export(ctx, "missing", ExportOpts{OutputDir: t.TempDir()})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ShiftHead)
	archiveFive(t, env)
	env.source.SetPlaylist("PL2", "Other", "etag-1", "z")
	_, err := env.archiver.ArchivePlaylist(ctx, "PL2", nil)
	require.NoError(t, err)

	dir := t.TempDir()
	progress := make(chan ProgressUpdate, 8)
	res, err := env.archiver.BulkExport(ctx, progress, []string{"PL1", "missing", "PL2"}, ExportOpts{
		Format:     FormatJSON,
		OutputDir:  dir,
		NumWorkers: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalPlaylists)
	assert.Equal(t, 2, res.SuccessfulExports)
	assert.Equal(t, 1, res.FailedExports)
	assert.Len(t, res.Results, 3)
	assert.Len(t, progress, 3)

	tu.AssertFileExists(t, filepath.Join(dir, "PL1.json"))
	tu.AssertFileExists(t, filepath.Join(dir, "PL2.json"))

	var manifest formatter.ExportManifest
	require.NoError(t, json.Unmarshal([]byte(tu.MustReadFile(t, res.ManifestPath)), &manifest))
	assert.Equal(t, FormatJSON, manifest.Format)
	assert.Equal(t, 2, manifest.Succeeded)
	assert.Equal(t, 1, manifest.Failed)
	assert.True(t, manifest.GeneratedAt.Equal(fixedTime))

	failed := 0
	for _, entry := range manifest.Playlists {
		if entry.Error != "" {
			failed++
			assert.Equal(t, "missing", entry.PlaylistID)
		}
	}
	assert.Equal(t, 1, failed)

	want := []string{"PL1", "missing", "PL2"}
	var got []string
	for _, r := range res.Results {
		got = append(got, r.PlaylistID)
	}
	assert.Equal(t, want, got)
	got = got[:0]
	for _, entry := range manifest.Playlists {
		got = append(got, entry.PlaylistID)
	}
	assert.Equal(t, want, got)

	t.Run("manifest is identical across runs", func(t *testing.T) {
		ids := []string{"PL2", "PL1", "missing"}
		opts := ExportOpts{Format: FormatCSV, OutputDir: t.TempDir(), NumWorkers: 3}

		first, err := env.archiver.BulkExport(ctx, nil, ids, opts)
		require.NoError(t, err)
		before := tu.MustReadFile(t, first.ManifestPath)

		for range 5 {
			again, err := env.archiver.BulkExport(ctx, nil, ids, opts)
			require.NoError(t, err)
			assert.Equal(t, before, tu.MustReadFile(t, again.ManifestPath))
		}
	})
}
