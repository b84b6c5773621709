// Package repositories implements SQLite persistence for the playlist archive.
//
// [ArchiveRepository] implements [models.ArchiveStore] over a [sql.DB]; [ArchiveTx] is the
// same surface bound to a [sql.Tx] and is what the archive engine writes through.
//
// Inserts use ON CONFLICT DO NOTHING so that re-archiving and re-importing are
// idempotent: a duplicate key is a no-op reported as "not inserted", never an error.
// Videos are shared between playlists and are garbage-collected by join when the
// last referencing item disappears.
package repositories
