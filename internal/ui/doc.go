// Package ui implements an interactive terminal browser for the archive using bubbletea's Elm architecture.
//
// The TUI walks through a small set of views:
//  1. [PlaylistListView] : Browse archived playlists
//  2. [ItemListView] : Browse the items of one playlist in position order
//  3. [ConfirmView] : Confirm re-archiving the selected playlist
//  4. [ArchiveView] : Monitor progress updates while the archive runs
//  5. [ResultView] : Display what the run added
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.Archiver], providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
// Filtering ("/") ranks items by the same similarity score as the search command.
package ui
