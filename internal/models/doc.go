// Package models defines the archive's domain entities.
//
// Persisted entities mirror the three archive relations:
//   - [Playlist] : an archived playlist with its freshness token
//   - [PlaylistItem] : membership of a video in a playlist at a dense, zero-based position
//   - [Video] : a video shared by every playlist that references it
//
// Read-side and transport types:
//   - [Entry] : an item joined with its video, the row shape of listings, search and export
//   - [SourceItem] : an item as reported by the remote playlist source
//   - [ArchiveRun] : history of archive invocations
//   - [PlaylistExport] : a playlist and its entries, as written to and read from export files
//
// [ItemCount] is the tagged per-playlist item budget used by previews.
package models
