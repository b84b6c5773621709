package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/ytarchive/internal/services"
	"github.com/desertthunder/ytarchive/internal/shared"
)

// FreshnessState is the verdict of [CheckForChanges].
type FreshnessState int

const (
	NotArchived FreshnessState = iota
	Unchanged
	Changed
)

func (s FreshnessState) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return "not_archived"
	}
}

// Freshness carries the verdict and the token fetched to reach it.
// Token must be persisted as-is when the change is applied.
type Freshness struct {
	State FreshnessState
	Token string
}

// TokenReader is the store surface read by the freshness check.
type TokenReader interface {
	StoredFreshnessToken(ctx context.Context, playlistID string) (string, bool, error)
}

// FetchFreshnessToken requests a one-item page and returns its freshness token.
//
// Every stored token is obtained through this call so that tokens stay comparable.
func FetchFreshnessToken(ctx context.Context, src services.PlaylistSource, playlistID string) (string, error) {
	page, err := src.ListPage(ctx, playlistID, 1, "")
	if err != nil {
		if !errors.Is(err, shared.ErrSourceUnavailable) && !errors.Is(err, shared.ErrNotFound) {
			err = fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
		}
		return "", fmt.Errorf("fetch freshness token for %s: %w", playlistID, err)
	}
	return page.FreshnessToken, nil
}

// CheckForChanges compares the remote freshness token with the stored one. It writes nothing.
func CheckForChanges(ctx context.Context, src services.PlaylistSource, store TokenReader, playlistID string) (Freshness, error) {
	token, err := FetchFreshnessToken(ctx, src, playlistID)
	if err != nil {
		return Freshness{}, err
	}

	stored, ok, err := store.StoredFreshnessToken(ctx, playlistID)
	if err != nil {
		return Freshness{}, fmt.Errorf("read stored freshness token: %w", err)
	}

	switch {
	case !ok:
		return Freshness{State: NotArchived, Token: token}, nil
	case stored == token:
		return Freshness{State: Unchanged, Token: token}, nil
	default:
		return Freshness{State: Changed, Token: token}, nil
	}
}
