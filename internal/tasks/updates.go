package tasks

import (
	"fmt"

	"github.com/desertthunder/ytarchive/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CheckFreshness Phase = iota
	FetchMetadata
	FetchItems
	Reconcile
	Commit
	Preview
	ExportPlaylist
	ImportPlaylist
)

func (p Phase) String() string {
	switch p {
	case CheckFreshness:
		return "check_freshness"
	case FetchMetadata:
		return "fetch_metadata"
	case FetchItems:
		return "fetch_items"
	case Reconcile:
		return "reconcile"
	case Commit:
		return "commit"
	case Preview:
		return "preview"
	case ExportPlaylist:
		return "export_playlist"
	case ImportPlaylist:
		return "import_playlist"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func checkFreshnessUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckFreshness,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Checking %s for changes...", step, total, playlistID),
	}
}

func fetchMetadataUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMetadata,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching playlist %s...", step, total, playlistID),
	}
}

func fetchItemsUpdate(fetched int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    fetched,
		Message: fmt.Sprintf("Archived %d items from %s", fetched, title),
	}
}

func reconcileUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking for new items in %s...", step, total, playlistID),
	}
}

func commitUpdate(step, total int, result *ArchiveResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Commit,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s: %s, %d new items", step, total, result.PlaylistID, result.Mode, result.ItemsAdded),
		Data:    result,
	}
}

func previewUpdate(step, total int, playlistID string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Preview,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Peeking %s (%s items)...", step, total, playlistID, countLabel(count)),
	}
}

func countLabel(n int) string {
	if n < 0 {
		return "all"
	}
	return fmt.Sprint(n)
}

func exportCompletedUpdate(step, total int, playlist models.Playlist, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, playlist.Title, filesCount),
	}
}

func exportFailedUpdate(step, total int, playlistID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, playlistID, err),
	}
}

func importUpdate(playlistID string, items int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Importing %s (%d items)...", playlistID, items),
	}
}
