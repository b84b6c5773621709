package search

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
)

const (
	DefaultCutoff = 0.6
	DefaultLimit  = 10
)

// EntryLister supplies search candidates. An empty playlistID lists every archived entry.
type EntryLister interface {
	ListEntries(ctx context.Context, playlistID string) ([]models.Entry, error)
}

// Options scopes and bounds a search.
type Options struct {
	PlaylistID string  // empty searches the whole archive
	Limit      int     // maximum number of matches, must be positive
	Cutoff     float64 // minimum score in [0,1]
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Limit: DefaultLimit, Cutoff: DefaultCutoff}
}

// OptionsFromConfig builds options from the [search] config section.
func OptionsFromConfig(cfg shared.SearchConfig) Options {
	opts := DefaultOptions()
	if cfg.Limit > 0 {
		opts.Limit = cfg.Limit
	}
	if cfg.Cutoff != nil {
		opts.Cutoff = *cfg.Cutoff
	}
	return opts
}

func (o Options) validate() error {
	if o.Limit < 1 {
		return fmt.Errorf("%w: limit must be positive, got %d", shared.ErrInvalidArgument, o.Limit)
	}
	if o.Cutoff < 0 || o.Cutoff > 1 {
		return fmt.Errorf("%w: cutoff must be within [0,1], got %v", shared.ErrInvalidArgument, o.Cutoff)
	}
	return nil
}

// Match is a scored search result.
type Match struct {
	models.Entry
	Score float64
}

// Searcher runs fuzzy title searches against an archive.
type Searcher struct {
	entries EntryLister
	logger  *log.Logger
}

// New creates a Searcher. A nil logger discards output.
func New(entries EntryLister, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Searcher{entries: entries, logger: logger}
}

// Search returns entries whose title scores at least opts.Cutoff against query,
// ordered by descending score. Equal scores keep archive order (playlist, then position).
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	candidates, err := s.entries.ListEntries(ctx, opts.PlaylistID)
	if err != nil {
		return nil, fmt.Errorf("list search candidates: %w", err)
	}

	n := newNormalizer()
	q := n.normalize(query)

	var matches []Match
	for _, entry := range candidates {
		score := ratio(q, n.normalize(entry.Title))
		if score >= opts.Cutoff {
			matches = append(matches, Match{Entry: entry, Score: score})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	s.logger.Debug("search finished", "query", query, "playlist", opts.PlaylistID, "candidates", len(candidates), "matches", len(matches))
	return matches, nil
}
