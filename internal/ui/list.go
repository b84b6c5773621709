package ui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/search"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = entryItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string {
	if i.playlist.Title == "" {
		return i.playlist.ID
	}
	return i.playlist.Title
}
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d items • %s", i.playlist.ItemCount, i.playlist.ID)
	if !i.playlist.LastUpdatedAt.IsZero() {
		desc = fmt.Sprintf("%s • updated %s", desc, i.playlist.LastUpdatedAt.Format("2006-01-02"))
	}
	return desc
}

// entryItem wraps [models.Entry] to implement [list.Item].
type entryItem struct {
	entry models.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string {
	return fmt.Sprintf("%d. %s", i.entry.Position+1, i.entry.Title)
}
func (i entryItem) Description() string {
	desc := i.entry.VideoID
	if i.entry.PrivacyStatus != "" && i.entry.PrivacyStatus != "public" {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.PrivacyStatus)
	}
	if !i.entry.AddedAt.IsZero() {
		desc = fmt.Sprintf("%s • added %s", desc, i.entry.AddedAt.Format("2006-01-02"))
	}
	return desc
}

// filterCutoff is the minimum similarity an item needs to survive filtering.
const filterCutoff = 0.3

// similarityFilter is a [list.FilterFunc] ranking targets by [search.Similarity].
// Targets containing the term are always kept.
func similarityFilter(term string, targets []string) []list.Rank {
	type scored struct {
		rank  list.Rank
		score float64
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	var hits []scored
	for i, target := range targets {
		rank := list.Rank{Index: i}
		score := search.Similarity(term, target)

		lower := strings.ToLower(target)
		if idx := strings.Index(lower, needle); needle != "" && idx >= 0 {
			score = 1
			start := utf8.RuneCountInString(lower[:idx])
			for j := range utf8.RuneCountInString(needle) {
				rank.MatchedIndexes = append(rank.MatchedIndexes, start+j)
			}
		}
		if score < filterCutoff {
			continue
		}
		hits = append(hits, scored{rank: rank, score: score})
	}

	slices.SortStableFunc(hits, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	ranks := make([]list.Rank, len(hits))
	for i, h := range hits {
		ranks[i] = h.rank
	}
	return ranks
}

func newList(items []list.Item, title string, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Filter = similarityFilter
	l.SetSize(max(width, 0), max(height, 0))
	return l
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}
	return items
}

func entryItems(entries []models.Entry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	return items
}
