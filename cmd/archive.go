package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/desertthunder/ytarchive/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Archive archives the playlist given by --id or every playlist in --file.
func (r *Runner) Archive(ctx context.Context, cmd *cli.Command) error {
	ids, err := playlistIDs(cmd)
	if err != nil {
		return err
	}

	archiver, err := r.archiver(ctx, true)
	if err != nil {
		return err
	}

	r.logger.Info("starting archive", "playlists", len(ids))

	asJSON := cmd.Bool("json")
	var results []tasks.ArchiveResult
	if asJSON {
		results, err = archiver.ArchiveMany(ctx, ids, nil)
	} else {
		results, err = r.withProgress(func(progress chan<- tasks.ProgressUpdate) ([]tasks.ArchiveResult, error) {
			return archiver.ArchiveMany(ctx, ids, progress)
		})
	}

	if asJSON {
		if jerr := r.writeJSON(archiveSummaries(results), true); jerr != nil {
			return jerr
		}
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Archive Complete")
	for _, res := range results {
		switch {
		case res.Err != nil:
			r.writePlain("✗ %s: %v\n", res.PlaylistID, res.Err)
		case res.Warning != nil:
			r.writePlain("! %s (%s): skipped, could not check for changes\n", res.Title, res.PlaylistID)
		default:
			r.writePlain("✓ %s (%s): %s, %d new items\n", res.Title, res.PlaylistID, res.Mode, res.ItemsAdded)
		}
	}

	return err
}

// withProgress prints progress updates while fn runs.
func (r *Runner) withProgress(fn func(chan<- tasks.ProgressUpdate) ([]tasks.ArchiveResult, error)) ([]tasks.ArchiveResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchItems:
				r.writePlain("   %s\n", update.Message)
			default:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	results, err := fn(progressCh)
	close(progressCh)
	wg.Wait()
	return results, err
}

type archiveSummary struct {
	PlaylistID     string `json:"playlist_id"`
	Title          string `json:"title,omitempty"`
	Mode           string `json:"mode,omitempty"`
	ItemsAdded     int    `json:"items_added"`
	FreshnessToken string `json:"freshness_token,omitempty"`
	RunID          string `json:"run_id,omitempty"`
	Warning        string `json:"warning,omitempty"`
	Error          string `json:"error,omitempty"`
}

func archiveSummaries(results []tasks.ArchiveResult) []archiveSummary {
	out := make([]archiveSummary, 0, len(results))
	for _, res := range results {
		s := archiveSummary{
			PlaylistID:     res.PlaylistID,
			Title:          res.Title,
			Mode:           string(res.Mode),
			ItemsAdded:     res.ItemsAdded,
			FreshnessToken: res.FreshnessToken,
			RunID:          res.RunID,
		}
		if res.Warning != nil {
			s.Warning = res.Warning.Error()
		}
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

// Peek prints the first items of each playlist without touching the archive.
func (r *Runner) Peek(ctx context.Context, cmd *cli.Command) error {
	ids, err := playlistIDs(cmd)
	if err != nil {
		return err
	}

	count, err := models.ParseItemCount(cmd.String("number"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	archiver, err := r.archiver(ctx, true)
	if err != nil {
		return err
	}

	previews, err := archiver.Preview(ctx, ids, count, nil)
	for _, p := range previews {
		r.writePlainHeader(fmt.Sprintf("%s (%d items)", p.PlaylistID, len(p.Items)))
		if p.Err != nil {
			r.writePlain("✗ %v\n\n", p.Err)
			continue
		}
		for _, item := range p.Items {
			r.writePlain("%4d. %s [%s]\n", item.Position+1, item.Title, item.VideoID)
		}
		r.writePlain("\n")
	}
	return err
}

// playlistIDs reads --id or --file. Exactly one of them must be set.
func playlistIDs(cmd *cli.Command) ([]string, error) {
	id := strings.TrimSpace(cmd.String("id"))
	file := cmd.String("file")

	switch {
	case id == "" && file == "":
		return nil, fmt.Errorf("%w: either --id or --file must be provided", shared.ErrMissingArgument)
	case id != "" && file != "":
		return nil, fmt.Errorf("%w: cannot specify both --id and --file", shared.ErrInvalidArgument)
	case id != "":
		return []string{id}, nil
	default:
		return readPlaylistIDs(file)
	}
}

// readPlaylistIDs reads one playlist ID per line, skipping blank lines and # comments.
func readPlaylistIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: playlist file: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: playlist file: %v", shared.ErrInvalidInput, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no playlist IDs in %s", shared.ErrInvalidInput, path)
	}
	return ids, nil
}
