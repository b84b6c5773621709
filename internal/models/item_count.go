package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemCount is a per-playlist item budget: either one count for every playlist
// or an ordered list with one count per playlist.
//
// The zero value is "no budget".
type ItemCount struct {
	kind   itemCountKind
	single int
	per    []int
}

type itemCountKind int

const (
	countUnbounded itemCountKind = iota
	countSingle
	countPerPlaylist
)

// Unbounded is an [ItemCount] without a budget.
func Unbounded() ItemCount { return ItemCount{} }

// Single applies n to every playlist.
func Single(n int) ItemCount { return ItemCount{kind: countSingle, single: n} }

// PerPlaylist assigns counts[i] to the i-th playlist.
func PerPlaylist(counts ...int) ItemCount {
	return ItemCount{kind: countPerPlaylist, per: append([]int(nil), counts...)}
}

// ParseItemCount parses "" (unbounded), "10" (single) or "10,5,20" (per playlist).
func ParseItemCount(s string) (ItemCount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unbounded(), nil
	}

	parts := strings.Split(s, ",")
	counts := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ItemCount{}, fmt.Errorf("invalid item count %q: %w", p, err)
		}
		if n < 0 {
			return ItemCount{}, fmt.Errorf("invalid item count %d: must not be negative", n)
		}
		counts = append(counts, n)
	}

	if len(counts) == 1 {
		return Single(counts[0]), nil
	}
	return PerPlaylist(counts...), nil
}

// Validate checks the count against the number of playlists it will be applied to.
func (c ItemCount) Validate(playlists int) error {
	switch c.kind {
	case countSingle:
		if c.single < 0 {
			return fmt.Errorf("item count must not be negative, got %d", c.single)
		}
	case countPerPlaylist:
		if len(c.per) != playlists {
			return fmt.Errorf("got %d item counts for %d playlists", len(c.per), playlists)
		}
		for i, n := range c.per {
			if n < 0 {
				return fmt.Errorf("item count for playlist %d must not be negative, got %d", i, n)
			}
		}
	}
	return nil
}

// For returns the budget for the i-th playlist; ok is false when there is no budget.
func (c ItemCount) For(i int) (n int, ok bool) {
	switch c.kind {
	case countSingle:
		return c.single, true
	case countPerPlaylist:
		if i < 0 || i >= len(c.per) {
			return 0, false
		}
		return c.per[i], true
	default:
		return 0, false
	}
}

// Budget returns the i-th budget as an optional value for the page walker.
func (c ItemCount) Budget(i int) *int {
	n, ok := c.For(i)
	if !ok {
		return nil
	}
	return &n
}

func (c ItemCount) String() string {
	switch c.kind {
	case countSingle:
		return strconv.Itoa(c.single)
	case countPerPlaylist:
		parts := make([]string, len(c.per))
		for i, n := range c.per {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	default:
		return "all"
	}
}
