package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/services"
	"github.com/desertthunder/ytarchive/internal/shared"
)

// ShiftPolicy selects which stored positions move when new items are found at the head.
type ShiftPolicy int

const (
	// ShiftHead moves every stored item down by the number of new items.
	ShiftHead ShiftPolicy = iota
	// ShiftLegacy only moves items at position >= len(new)-1, matching older archives.
	// It can leave two items sharing a position.
	ShiftLegacy
)

// ParseShiftPolicy parses the archive.shift_policy config value.
func ParseShiftPolicy(s string) (ShiftPolicy, error) {
	switch s {
	case "", "head":
		return ShiftHead, nil
	case "legacy":
		return ShiftLegacy, nil
	default:
		return ShiftHead, fmt.Errorf("%w: unknown shift policy %q", shared.ErrInvalidConfig, s)
	}
}

func (p ShiftPolicy) String() string {
	if p == ShiftLegacy {
		return "legacy"
	}
	return "head"
}

// Threshold returns the lowest stored position that moves when n items are inserted at the head.
func (p ShiftPolicy) Threshold(n int) int {
	if p == ShiftLegacy {
		return max(n-1, 0)
	}
	return 0
}

// Reconciler applies items added at the head of a remote playlist to an archived copy.
type Reconciler struct {
	source   services.PlaylistSource
	pageSize int
	policy   ShiftPolicy
	now      func() time.Time
	logger   *log.Logger
}

// NewReconciler creates a reconciler reading from src.
func NewReconciler(src services.PlaylistSource, pageSize int, policy ShiftPolicy, now func() time.Time, logger *log.Logger) *Reconciler {
	return &Reconciler{source: src, pageSize: pageSize, policy: policy, now: now, logger: logger}
}

// ReconcileTop walks from the remote head until it meets an item already archived, then
// shifts the stored items down and inserts the new ones at positions 0..n-1 in walk order.
//
// Everything after the first known item is assumed unchanged. A video listed twice before
// that point is archived once. Returns the number of items inserted.
func (r *Reconciler) ReconcileTop(ctx context.Context, store models.ArchiveWriter, playlistID string) (int, error) {
	newItems, err := r.collectNew(ctx, store, playlistID)
	if err != nil {
		return 0, err
	}
	if len(newItems) == 0 {
		return 0, nil
	}

	threshold := r.policy.Threshold(len(newItems))
	if err := store.ShiftPositions(ctx, playlistID, threshold, len(newItems)); err != nil {
		return 0, fmt.Errorf("shift positions: %w", err)
	}
	r.logger.Debug("shifted stored items", "threshold", threshold, "delta", len(newItems), "policy", r.policy)

	addedAt := r.now()
	for i, item := range newItems {
		if _, err := store.InsertVideoIfAbsent(ctx, item.Video()); err != nil {
			return 0, fmt.Errorf("insert video %s: %w", item.VideoID, err)
		}

		ok, err := store.InsertItemIfAbsent(ctx, models.PlaylistItem{
			PlaylistID: playlistID,
			VideoID:    item.VideoID,
			Position:   i,
			AddedAt:    addedAt,
		})
		if err != nil {
			return 0, fmt.Errorf("insert item %s: %w", item.VideoID, err)
		}
		if !ok {
			return 0, fmt.Errorf("%w: item %s appeared during reconciliation", shared.ErrInconsistent, item.VideoID)
		}
	}

	return len(newItems), nil
}

func (r *Reconciler) collectNew(ctx context.Context, store models.ArchiveWriter, playlistID string) ([]models.SourceItem, error) {
	var newItems []models.SourceItem
	seen := map[string]bool{}

	for batch, err := range Walk(ctx, r.source, playlistID, r.pageSize, nil) {
		if err != nil {
			return nil, err
		}
		r.logger.Debug("fetched page", "items", len(batch.Items), "more", batch.Continuation != "")

		for _, item := range batch.Items {
			if err := item.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
			}

			exists, err := store.HasItem(ctx, playlistID, item.VideoID)
			if err != nil {
				return nil, fmt.Errorf("look up item %s: %w", item.VideoID, err)
			}
			if exists {
				r.logger.Debug("reached archived item", "video", item.VideoID, "new", len(newItems))
				return newItems, nil
			}

			if seen[item.VideoID] {
				continue
			}
			seen[item.VideoID] = true
			newItems = append(newItems, item)
		}
	}

	return newItems, nil
}
