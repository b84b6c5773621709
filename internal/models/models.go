// package models defines the data model for the playlist archive
package models

import (
	"fmt"
	"strings"
	"time"
)

// Playlist is an archived remote playlist.
type Playlist struct {
	ID             string
	Title          string
	CreatedAt      time.Time
	LastUpdatedAt  time.Time
	FreshnessToken string
	ItemCount      int // populated by listings, not stored
}

// PlaylistItem places a video in a playlist. AddedAt is set once, when the item is first archived.
type PlaylistItem struct {
	PlaylistID string
	VideoID    string
	Position   int
	AddedAt    time.Time
}

// Video attributes are global; a title or status is stored once for every playlist.
type Video struct {
	ID            string
	Title         string
	PrivacyStatus string
}

// Entry is a [PlaylistItem] joined with its [Video].
type Entry struct {
	PlaylistItem
	Title         string
	PrivacyStatus string
}

// SourceItem is a playlist item as listed by the remote source.
type SourceItem struct {
	VideoID       string
	Title         string
	Position      int
	PrivacyStatus string
}

// Validate reports whether the item can be archived.
func (s SourceItem) Validate() error {
	if strings.TrimSpace(s.VideoID) == "" {
		return fmt.Errorf("source item at position %d has no video ID", s.Position)
	}
	return nil
}

// Video returns the global video attributes of the item.
func (s SourceItem) Video() Video {
	return Video{ID: s.VideoID, Title: s.Title, PrivacyStatus: s.PrivacyStatus}
}

// Order selects position ordering for listings.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ArchiveMode describes what an archive run did.
type ArchiveMode string

const (
	ModeFull        ArchiveMode = "full"
	ModeIncremental ArchiveMode = "incremental"
	ModeUnchanged   ArchiveMode = "unchanged"
	ModeImport      ArchiveMode = "import"
)

// ArchiveRun is one recorded archive invocation.
type ArchiveRun struct {
	ID             string
	PlaylistID     string
	Mode           ArchiveMode
	ItemsAdded     int
	FreshnessToken string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration returns how long the run took.
func (r ArchiveRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// PlaylistExport is a playlist with its entries in position order, the unit of export and import.
type PlaylistExport struct {
	Playlist Playlist
	Entries  []Entry
}

// Videos returns the distinct videos referenced by the export.
func (e *PlaylistExport) Videos() []Video {
	seen := make(map[string]bool, len(e.Entries))
	videos := make([]Video, 0, len(e.Entries))
	for _, entry := range e.Entries {
		if seen[entry.VideoID] {
			continue
		}
		seen[entry.VideoID] = true
		videos = append(videos, Video{ID: entry.VideoID, Title: entry.Title, PrivacyStatus: entry.PrivacyStatus})
	}
	return videos
}
