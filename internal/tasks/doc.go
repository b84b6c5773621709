// Package tasks implements the playlist archive engine with real-time progress reporting.
//
// # Components
//
//  1. [CheckForChanges] : freshness oracle
//     - Fetches the remote freshness token with a one-item page request
//     - Compares it with the stored token: [Unchanged], [Changed] or [NotArchived]
//     - Never writes
//
//  2. [Walk] : page walker
//     - Lazy [iter.Seq2] of [ItemBatch] from the playlist head
//     - Stops at the last page or when the optional item budget is spent
//
//  3. [Reconciler.ReconcileTop] : top-peek reconciliation
//     - Walks from the head until the first item already archived
//     - Shifts stored positions by the number of new items ([ShiftPolicy] picks the threshold)
//     - Inserts the new items at positions 0..n-1 in walk order
//
//  4. [Archiver] : orchestration
//     - Unseen playlists get a full archive, archived ones a freshness check and top-peek
//     - One transaction per playlist; any error rolls back every write of the call
//     - Each committed call is recorded as a [models.ArchiveRun]
//
// # Offline Operations
//
// [Archiver.Import] and [Archiver.Export]/[Archiver.BulkExport] move archived playlists
// to and from files with the same insert-if-absent semantics as live archiving.
//
// # Progress Reporting
//
// All operations accept an optional channel for progress updates. The [ProgressUpdate] struct
// contains phase, step counters, messages, and optional data for UI rendering.
// Updates use select with default so a slow consumer never blocks the engine.
package tasks
