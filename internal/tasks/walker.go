package tasks

import (
	"context"
	"fmt"
	"iter"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/services"
	"github.com/desertthunder/ytarchive/internal/shared"
)

// ItemBatch is one page of items yielded by [Walk].
type ItemBatch struct {
	Items          []models.SourceItem
	Continuation   string
	FreshnessToken string
}

// Walk lazily pages through a playlist from its head.
//
// A nil budget walks to the end; otherwise at most *budget items are yielded and the last batch is truncated.
// A zero budget yields nothing and never calls the source. Empty pages are not yielded.
// Errors are yielded once, as the final element.
func Walk(ctx context.Context, src services.PlaylistSource, playlistID string, pageSize int, budget *int) iter.Seq2[ItemBatch, error] {
	return func(yield func(ItemBatch, error) bool) {
		if pageSize < 1 || pageSize > services.MaxPageSize {
			yield(ItemBatch{}, fmt.Errorf("%w: page size %d outside [1,%d]", shared.ErrInvalidArgument, pageSize, services.MaxPageSize))
			return
		}

		remaining := -1
		if budget != nil {
			if *budget < 0 {
				yield(ItemBatch{}, fmt.Errorf("%w: item budget %d is negative", shared.ErrInvalidArgument, *budget))
				return
			}
			remaining = *budget
		}
		if remaining == 0 {
			return
		}

		continuation := ""
		for {
			size := pageSize
			if remaining > 0 && remaining < size {
				size = remaining
			}

			page, err := src.ListPage(ctx, playlistID, size, continuation)
			if err != nil {
				yield(ItemBatch{}, fmt.Errorf("list page of %s: %w", playlistID, err))
				return
			}

			items := page.Items
			if remaining >= 0 {
				items = items[:min(len(items), remaining)]
				remaining -= len(items)
			}

			if len(items) > 0 {
				batch := ItemBatch{Items: items, Continuation: page.NextContinuation, FreshnessToken: page.FreshnessToken}
				if !yield(batch, nil) {
					return
				}
			}

			if remaining == 0 || !page.HasMore() {
				return
			}
			if page.NextContinuation == continuation {
				yield(ItemBatch{}, fmt.Errorf("%w: continuation %q did not advance", shared.ErrSourceUnavailable, continuation))
				return
			}
			continuation = page.NextContinuation
		}
	}
}
