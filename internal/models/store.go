package models

import (
	"context"
	"time"
)

// PlaylistMetadata is the playlist row written at the end of an archive.
// Nil Title/CreatedAt leave the stored values untouched on update.
type PlaylistMetadata struct {
	PlaylistID     string
	Title          *string
	CreatedAt      *time.Time
	LastUpdatedAt  time.Time
	FreshnessToken string
}

// ArchiveWriter is the write surface used inside an archive transaction.
type ArchiveWriter interface {
	StoredFreshnessToken(ctx context.Context, playlistID string) (token string, ok bool, err error)
	HasItem(ctx context.Context, playlistID, videoID string) (bool, error)
	InsertItemIfAbsent(ctx context.Context, item PlaylistItem) (bool, error)
	InsertVideoIfAbsent(ctx context.Context, video Video) (bool, error)
	InsertPlaylistIfAbsent(ctx context.Context, playlist Playlist) (bool, error)
	ShiftPositions(ctx context.Context, playlistID string, threshold, delta int) error
	UpsertPlaylistMetadata(ctx context.Context, meta PlaylistMetadata) error
	RecordRun(ctx context.Context, run ArchiveRun) error
}

// ArchiveTx is an [ArchiveWriter] bound to one transaction.
type ArchiveTx interface {
	ArchiveWriter
	Commit() error
	Rollback() error
}

// ArchiveReader is the read surface used by listing, search, export and the UI.
type ArchiveReader interface {
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)
	ListPlaylists(ctx context.Context) ([]Playlist, error)
	ListItems(ctx context.Context, playlistID string, order Order) ([]Entry, error)
	ListEntries(ctx context.Context, playlistID string) ([]Entry, error)
	ListRuns(ctx context.Context, playlistID string, limit int) ([]ArchiveRun, error)
}

// ArchiveStore is the full persistence contract of the archive.
type ArchiveStore interface {
	ArchiveWriter
	ArchiveReader
	BeginTx(ctx context.Context) (ArchiveTx, error)
	DeletePlaylist(ctx context.Context, playlistID string) (videosRemoved int, err error)
}
