package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
)

const playlistColumns = `
	p.playlist_id, p.title, p.created_at, p.last_updated_at, p.freshness_token,
	(SELECT COUNT(*) FROM playlist_items pi WHERE pi.playlist_id = p.playlist_id)
`

const entryColumns = `
	pi.playlist_id, pi.video_id, pi.position, pi.added_at, v.title, v.privacy_status
`

// GetPlaylist retrieves an archived playlist with its item count.
func (r *ArchiveRepository) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT"+playlistColumns+"FROM playlists p WHERE p.playlist_id = ?", playlistID)

	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

// ListPlaylists returns every archived playlist ordered by title, then ID.
func (r *ArchiveRepository) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+playlistColumns+"FROM playlists p ORDER BY p.title COLLATE NOCASE ASC, p.playlist_id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// ListItems returns the playlist's items joined with their videos, ordered by position.
func (r *ArchiveRepository) ListItems(ctx context.Context, playlistID string, order models.Order) ([]models.Entry, error) {
	direction := "ASC"
	if order == models.Descending {
		direction = "DESC"
	}

	query := "SELECT" + entryColumns + `
		FROM playlist_items pi
		JOIN videos v ON v.video_id = pi.video_id
		WHERE pi.playlist_id = ?
		ORDER BY pi.position ` + direction + ", pi.added_at " + direction

	return r.queryEntries(ctx, query, playlistID)
}

// ListEntries returns entries of one playlist, or of every playlist when playlistID is empty.
// Used as the candidate set for search.
func (r *ArchiveRepository) ListEntries(ctx context.Context, playlistID string) ([]models.Entry, error) {
	query := "SELECT" + entryColumns + `
		FROM playlist_items pi
		JOIN videos v ON v.video_id = pi.video_id`
	args := []any{}

	if playlistID != "" {
		query += " WHERE pi.playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY pi.playlist_id ASC, pi.position ASC"

	return r.queryEntries(ctx, query, args...)
}

// ListRuns returns archive runs, newest first. An empty playlistID lists all runs;
// a limit below one means no limit.
func (r *ArchiveRepository) ListRuns(ctx context.Context, playlistID string, limit int) ([]models.ArchiveRun, error) {
	query := `
		SELECT id, playlist_id, mode, items_added, freshness_token, started_at, finished_at
		FROM archive_runs
	`
	args := []any{}

	if playlistID != "" {
		query += " WHERE playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY started_at DESC, id ASC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ArchiveRun
	for rows.Next() {
		var (
			run        models.ArchiveRun
			mode       string
			startedAt  sql.NullTime
			finishedAt sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.PlaylistID, &mode, &run.ItemsAdded, &run.FreshnessToken, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archive run: %w", err)
		}
		run.Mode = models.ArchiveMode(mode)
		run.StartedAt = scanTime(startedAt)
		run.FinishedAt = scanTime(finishedAt)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *ArchiveRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist items: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			entry   models.Entry
			addedAt sql.NullTime
		)
		if err := rows.Scan(
			&entry.PlaylistID, &entry.VideoID, &entry.Position, &addedAt, &entry.Title, &entry.PrivacyStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan playlist item: %w", err)
		}
		entry.AddedAt = scanTime(addedAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// scanPlaylist scans a row selected with playlistColumns into a [models.Playlist]
func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		playlist      models.Playlist
		createdAt     sql.NullTime
		lastUpdatedAt sql.NullTime
	)

	err := row.Scan(&playlist.ID, &playlist.Title, &createdAt, &lastUpdatedAt, &playlist.FreshnessToken, &playlist.ItemCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist.CreatedAt = scanTime(createdAt)
	playlist.LastUpdatedAt = scanTime(lastUpdatedAt)

	return &playlist, nil
}
