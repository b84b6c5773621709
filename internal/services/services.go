package services

import (
	"context"

	"github.com/desertthunder/ytarchive/internal/models"
)

// MaxPageSize is the largest page the remote API serves.
const MaxPageSize = 50

// PlaylistSource lists remote playlist items page by page.
type PlaylistSource interface {
	// ListPage fetches up to maxItems items starting at continuation (empty for the head).
	ListPage(ctx context.Context, playlistID string, maxItems int, continuation string) (*Page, error)

	// GetMetadata fetches playlist attributes that are not part of a page.
	GetMetadata(ctx context.Context, playlistID string) (*Metadata, error)

	// Name returns the name of the source (e.g., "YouTube")
	Name() string
}

// Page is one page of a playlist listing.
type Page struct {
	Items            []models.SourceItem
	NextContinuation string
	FreshnessToken   string
}

// HasMore reports whether another page follows.
func (p *Page) HasMore() bool {
	return p.NextContinuation != ""
}

// Metadata holds remote playlist attributes.
type Metadata struct {
	Title string
}
