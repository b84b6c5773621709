package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
)

// archiveWriter implements [models.ArchiveWriter] against any [querier].
type archiveWriter struct {
	q querier
}

// ArchiveRepository implements [models.ArchiveStore] for SQLite.
type ArchiveRepository struct {
	archiveWriter
	db *sql.DB
}

// ArchiveTx implements [models.ArchiveTx]; every write goes through the wrapped transaction.
type ArchiveTx struct {
	archiveWriter
	tx *sql.Tx
}

var (
	_ models.ArchiveStore = (*ArchiveRepository)(nil)
	_ models.ArchiveTx    = (*ArchiveTx)(nil)
)

// NewArchiveRepository creates a new ArchiveRepository with the given database connection
func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{archiveWriter: archiveWriter{q: db}, db: db}
}

// BeginTx starts a transaction. Callers must Commit or Rollback.
func (r *ArchiveRepository) BeginTx(ctx context.Context) (models.ArchiveTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &ArchiveTx{archiveWriter: archiveWriter{q: tx}, tx: tx}, nil
}

// Commit commits the transaction.
func (t *ArchiveTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction is a no-op.
func (t *ArchiveTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// StoredFreshnessToken returns the stored token; ok is false when the playlist is not archived.
func (w archiveWriter) StoredFreshnessToken(ctx context.Context, playlistID string) (string, bool, error) {
	var token string
	err := w.q.QueryRowContext(ctx,
		"SELECT freshness_token FROM playlists WHERE playlist_id = ?", playlistID,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read freshness token: %w", err)
	}
	return token, true, nil
}

// HasItem reports whether the video is already archived in the playlist.
func (w archiveWriter) HasItem(ctx context.Context, playlistID, videoID string) (bool, error) {
	var exists bool
	err := w.q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM playlist_items WHERE playlist_id = ? AND video_id = ?)",
		playlistID, videoID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check playlist item: %w", err)
	}
	return exists, nil
}

// InsertItemIfAbsent inserts the item unless (playlist_id, video_id) is already stored.
func (w archiveWriter) InsertItemIfAbsent(ctx context.Context, item models.PlaylistItem) (bool, error) {
	result, err := w.q.ExecContext(ctx, `
		INSERT INTO playlist_items (playlist_id, video_id, position, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(playlist_id, video_id) DO NOTHING
	`, item.PlaylistID, item.VideoID, item.Position, item.AddedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert playlist item: %w", classify(err))
	}
	return inserted(result)
}

// InsertVideoIfAbsent inserts the video. An existing video's title and status are never overwritten.
func (w archiveWriter) InsertVideoIfAbsent(ctx context.Context, video models.Video) (bool, error) {
	result, err := w.q.ExecContext(ctx, `
		INSERT INTO videos (video_id, title, privacy_status)
		VALUES (?, ?, ?)
		ON CONFLICT(video_id) DO NOTHING
	`, video.ID, video.Title, video.PrivacyStatus)
	if err != nil {
		return false, fmt.Errorf("failed to insert video: %w", classify(err))
	}
	return inserted(result)
}

// InsertPlaylistIfAbsent inserts a complete playlist row, used by imports.
func (w archiveWriter) InsertPlaylistIfAbsent(ctx context.Context, p models.Playlist) (bool, error) {
	result, err := w.q.ExecContext(ctx, `
		INSERT INTO playlists (playlist_id, title, created_at, last_updated_at, freshness_token)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(playlist_id) DO NOTHING
	`, p.ID, p.Title, p.CreatedAt.UTC(), p.LastUpdatedAt.UTC(), p.FreshnessToken)
	if err != nil {
		return false, fmt.Errorf("failed to insert playlist: %w", classify(err))
	}
	return inserted(result)
}

// ShiftPositions adds delta to the position of every item of the playlist at or past threshold.
func (w archiveWriter) ShiftPositions(ctx context.Context, playlistID string, threshold, delta int) error {
	_, err := w.q.ExecContext(ctx,
		"UPDATE playlist_items SET position = position + ? WHERE playlist_id = ? AND position >= ?",
		delta, playlistID, threshold,
	)
	if err != nil {
		return fmt.Errorf("failed to shift positions: %w", err)
	}
	return nil
}

// UpsertPlaylistMetadata creates the playlist row or updates its sync metadata.
//
// On update, Title and CreatedAt are only written when non-nil.
func (w archiveWriter) UpsertPlaylistMetadata(ctx context.Context, meta models.PlaylistMetadata) error {
	createdAt := meta.LastUpdatedAt
	if meta.CreatedAt != nil {
		createdAt = *meta.CreatedAt
	}

	var title sql.NullString
	if meta.Title != nil {
		title = sql.NullString{String: *meta.Title, Valid: true}
	}

	var created sql.NullTime
	if meta.CreatedAt != nil {
		created = sql.NullTime{Time: meta.CreatedAt.UTC(), Valid: true}
	}

	_, err := w.q.ExecContext(ctx, `
		INSERT INTO playlists (playlist_id, title, created_at, last_updated_at, freshness_token)
		VALUES (?, COALESCE(?, ''), ?, ?, ?)
		ON CONFLICT(playlist_id) DO UPDATE SET
			title = COALESCE(?, playlists.title),
			created_at = COALESCE(?, playlists.created_at),
			last_updated_at = excluded.last_updated_at,
			freshness_token = excluded.freshness_token
	`,
		meta.PlaylistID, title, createdAt.UTC(), meta.LastUpdatedAt.UTC(), meta.FreshnessToken,
		title, created,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist metadata: %w", err)
	}
	return nil
}

// RecordRun stores an archive run.
func (w archiveWriter) RecordRun(ctx context.Context, run models.ArchiveRun) error {
	_, err := w.q.ExecContext(ctx, `
		INSERT INTO archive_runs (id, playlist_id, mode, items_added, freshness_token, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.PlaylistID, string(run.Mode), run.ItemsAdded, run.FreshnessToken, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record archive run: %w", classify(err))
	}
	return nil
}

// DeletePlaylist removes the playlist, its items (cascade) and every video no longer
// referenced by any item. Returns the number of videos removed.
func (r *ArchiveRepository) DeletePlaylist(ctx context.Context, playlistID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE playlist_id = ?", playlistID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete playlist: %w", err)
	}
	if ok, err := inserted(result); err != nil {
		return 0, err
	} else if !ok {
		return 0, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	// Covered by ON DELETE CASCADE when foreign keys are enforced.
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_items WHERE playlist_id = ?", playlistID); err != nil {
		return 0, fmt.Errorf("failed to delete playlist items: %w", err)
	}

	gc, err := tx.ExecContext(ctx, `
		DELETE FROM videos
		WHERE NOT EXISTS (SELECT 1 FROM playlist_items pi WHERE pi.video_id = videos.video_id)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to remove orphaned videos: %w", err)
	}
	removed, err := gc.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return int(removed), nil
}

// scanTime normalizes a nullable timestamp column to UTC.
func scanTime(v sql.NullTime) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time.UTC()
}
