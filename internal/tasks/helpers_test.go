package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/repositories"
	"github.com/desertthunder/ytarchive/internal/shared"
	tu "github.com/desertthunder/ytarchive/internal/testing"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *sql.DB
	repo     *repositories.ArchiveRepository
	source   *tu.FakeSource
	archiver *Archiver
}

func newTestEnv(t *testing.T, policy ShiftPolicy) *testEnv {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	repo := repositories.NewArchiveRepository(db)
	src := tu.NewFakeSource()

	archiver, err := NewArchiver(ArchiverOpts{
		Source:      src,
		Store:       repo,
		Clock:       func() time.Time { return fixedTime },
		PageSize:    2,
		ShiftPolicy: policy,
	})
	require.NoError(t, err)

	return &testEnv{db: db, repo: repo, source: src, archiver: archiver}
}

// failNext makes the n-th source call from now fail.
func (e *testEnv) failNext(n int) {
	e.source.FailOnCall = e.source.Calls + n
}

func (e *testEnv) positions(t *testing.T, playlistID string) map[string]int {
	t.Helper()
	entries, err := e.repo.ListItems(context.Background(), playlistID, models.Ascending)
	require.NoError(t, err)

	out := make(map[string]int, len(entries))
	for _, entry := range entries {
		out[entry.VideoID] = entry.Position
	}
	return out
}

func (e *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// snapshot renders every archive row so two states can be compared byte for byte.
func (e *testEnv) snapshot(t *testing.T) string {
	t.Helper()

	queries := []string{
		"SELECT playlist_id, title, created_at, last_updated_at, freshness_token FROM playlists ORDER BY playlist_id",
		"SELECT playlist_id, video_id, position, added_at FROM playlist_items ORDER BY playlist_id, video_id",
		"SELECT video_id, title, privacy_status FROM videos ORDER BY video_id",
		"SELECT id, playlist_id, mode, items_added, freshness_token FROM archive_runs ORDER BY id",
	}

	var b strings.Builder
	for _, q := range queries {
		rows, err := e.db.Query(q)
		require.NoError(t, err)

		cols, err := rows.Columns()
		require.NoError(t, err)

		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			require.NoError(t, rows.Scan(ptrs...))
			fmt.Fprintln(&b, vals...)
		}
		require.NoError(t, rows.Err())
		rows.Close()
	}
	return b.String()
}

// requireContiguous checks that stored positions are exactly 0..n-1.
func requireContiguous(t *testing.T, positions map[string]int) {
	t.Helper()
	seen := make([]bool, len(positions))
	for video, pos := range positions {
		require.Truef(t, pos >= 0 && pos < len(positions), "video %s at position %d outside 0..%d", video, pos, len(positions)-1)
		require.Falsef(t, seen[pos], "position %d used twice", pos)
		seen[pos] = true
	}
}
