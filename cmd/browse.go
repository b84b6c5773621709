package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/search"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/urfave/cli/v3"
)

type playlistRow struct {
	ID             string `json:"playlist_id"`
	Title          string `json:"title"`
	Items          int    `json:"items"`
	CreatedAt      string `json:"created_at,omitempty"`
	LastUpdatedAt  string `json:"last_updated_at,omitempty"`
	FreshnessToken string `json:"freshness_token,omitempty"`
}

type entryRow struct {
	PlaylistID    string  `json:"playlist_id"`
	VideoID       string  `json:"video_id"`
	Position      int     `json:"position"`
	Title         string  `json:"title"`
	PrivacyStatus string  `json:"privacy_status,omitempty"`
	AddedAt       string  `json:"added_at,omitempty"`
	URL           string  `json:"url"`
	Score         float64 `json:"score,omitempty"`
}

func toPlaylistRow(p models.Playlist) playlistRow {
	return playlistRow{
		ID:             p.ID,
		Title:          p.Title,
		Items:          p.ItemCount,
		CreatedAt:      formatTime(p.CreatedAt),
		LastUpdatedAt:  formatTime(p.LastUpdatedAt),
		FreshnessToken: p.FreshnessToken,
	}
}

func toEntryRow(e models.Entry) entryRow {
	return entryRow{
		PlaylistID:    e.PlaylistID,
		VideoID:       e.VideoID,
		Position:      e.Position,
		Title:         e.Title,
		PrivacyStatus: e.PrivacyStatus,
		AddedAt:       formatTime(e.AddedAt),
		URL:           shared.VideoURL(e.VideoID),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// List prints every archived playlist.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	store, err := r.archiveStore()
	if err != nil {
		return err
	}

	playlists, err := store.ListPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]playlistRow, 0, len(playlists))
		for _, p := range playlists {
			rows = append(rows, toPlaylistRow(p))
		}
		return r.writeJSON(rows, true)
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists archived yet.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Archived playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%-36s %5d items  %s\n", p.ID, p.ItemCount, p.Title)
	}
	return nil
}

// Open prints an archived playlist's items in position order.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	playlistID := strings.TrimSpace(cmd.String("id"))
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	store, err := r.archiveStore()
	if err != nil {
		return err
	}

	playlist, err := store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("web") {
		url := shared.PlaylistURL(playlistID)
		r.logger.Info("opening playlist in browser", "url", url)
		return shared.OpenBrowser(url)
	}

	order := models.Ascending
	if cmd.Bool("desc") {
		order = models.Descending
	}

	entries, err := store.ListItems(ctx, playlistID, order)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]entryRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, toEntryRow(e))
		}
		return r.writeJSON(struct {
			Playlist playlistRow `json:"playlist"`
			Items    []entryRow  `json:"items"`
		}{toPlaylistRow(*playlist), rows}, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d items)", playlist.Title, len(entries)))
	for _, e := range entries {
		r.writePlain("%4d. %s [%s]", e.Position+1, e.Title, e.VideoID)
		if e.PrivacyStatus != "" && e.PrivacyStatus != "public" {
			r.writePlain(" (%s)", e.PrivacyStatus)
		}
		r.writePlain("\n")
	}
	return nil
}

// Search runs a fuzzy title search, globally or within --id.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	opts := search.OptionsFromConfig(r.config.Search)
	opts.PlaylistID = strings.TrimSpace(cmd.String("id"))
	if limit := cmd.Int("limit"); limit != 0 {
		opts.Limit = limit
	}
	if cutoff := cmd.Float("cutoff"); cutoff >= 0 {
		opts.Cutoff = cutoff
	}

	store, err := r.archiveStore()
	if err != nil {
		return err
	}

	if opts.PlaylistID != "" {
		if _, err := store.GetPlaylist(ctx, opts.PlaylistID); err != nil {
			return err
		}
	}

	matches, err := search.New(store, r.logger).Search(ctx, query, opts)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]entryRow, 0, len(matches))
		for _, m := range matches {
			row := toEntryRow(m.Entry)
			row.Score = m.Score
			rows = append(rows, row)
		}
		return r.writeJSON(rows, true)
	}

	if len(matches) == 0 {
		r.writePlain("No matches for %q (cutoff %.2f).\n", query, opts.Cutoff)
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Matches for %q", query))
	for _, m := range matches {
		r.writePlain("%.2f  %s [%s] in %s at %d\n", m.Score, m.Title, m.VideoID, m.PlaylistID, m.Position+1)
	}
	return nil
}

// History prints recorded archive runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	store, err := r.archiveStore()
	if err != nil {
		return err
	}

	runs, err := store.ListRuns(ctx, strings.TrimSpace(cmd.String("id")), cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type runRow struct {
			ID             string `json:"id"`
			PlaylistID     string `json:"playlist_id"`
			Mode           string `json:"mode"`
			ItemsAdded     int    `json:"items_added"`
			FreshnessToken string `json:"freshness_token,omitempty"`
			StartedAt      string `json:"started_at"`
			DurationMS     int64  `json:"duration_ms"`
		}
		rows := make([]runRow, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, runRow{
				ID:             run.ID,
				PlaylistID:     run.PlaylistID,
				Mode:           string(run.Mode),
				ItemsAdded:     run.ItemsAdded,
				FreshnessToken: run.FreshnessToken,
				StartedAt:      formatTime(run.StartedAt),
				DurationMS:     run.Duration().Milliseconds(),
			})
		}
		return r.writeJSON(rows, true)
	}

	if len(runs) == 0 {
		r.writePlain("No archive runs recorded.\n")
		return nil
	}

	r.writePlainHeader("Archive history")
	for _, run := range runs {
		r.writePlain("%s  %-12s %-36s +%d (%s)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"), run.Mode, run.PlaylistID, run.ItemsAdded, run.Duration().Round(time.Millisecond))
	}
	return nil
}
