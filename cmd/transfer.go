package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytarchive/internal/formatter"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/desertthunder/ytarchive/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes one or more archived playlists to --dir.
//
// A single playlist is written directly; several go through the bulk exporter,
// which also writes an export_manifest.json.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if !tasks.ValidFormat(format) {
		return fmt.Errorf("%w: unknown export format %q (want csv, markdown, txt or json)", shared.ErrInvalidArgument, format)
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Archive.ExportDir
	}
	opts := tasks.ExportOpts{Format: format, OutputDir: dir, NumWorkers: cmd.Int("workers")}

	archiver, err := r.archiver(ctx, false)
	if err != nil {
		return err
	}

	ids, err := r.exportIDs(ctx, cmd)
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		res, err := archiver.Export(ctx, ids[0], opts)
		if err != nil {
			return err
		}
		r.logger.Info("exported playlist", "playlist", res.PlaylistID, "files", len(res.Files))
		r.writePlain("✓ Exported %s\n", res.Title)
		for _, f := range res.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	progressCh := make(chan tasks.ProgressUpdate, len(ids))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	res, err := archiver.BulkExport(ctx, progressCh, ids, opts)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Exported: %d/%d playlists\n", res.SuccessfulExports, res.TotalPlaylists)
	r.writePlain("Directory: %s\n", res.OutputDirectory)
	r.writePlain("Manifest: %s\n", res.ManifestPath)
	if res.FailedExports > 0 {
		return fmt.Errorf("%d of %d exports failed, see %s", res.FailedExports, res.TotalPlaylists, res.ManifestPath)
	}
	return nil
}

func (r *Runner) exportIDs(ctx context.Context, cmd *cli.Command) ([]string, error) {
	var ids []string
	for _, id := range cmd.StringSlice("id") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if cmd.Bool("all") {
		if len(ids) > 0 {
			return nil, fmt.Errorf("%w: cannot specify both --id and --all", shared.ErrInvalidArgument)
		}
		store, err := r.archiveStore()
		if err != nil {
			return nil, err
		}
		playlists, err := store.ListPlaylists(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range playlists {
			ids = append(ids, p.ID)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: no playlists archived", shared.ErrNotFound)
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: either --id or --all must be provided", shared.ErrMissingArgument)
	}
	return ids, nil
}

// Import loads a CSV export into the archive. Rows already present are left untouched.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := strings.TrimSpace(cmd.StringArg("file"))
	if path == "" {
		return fmt.Errorf("%w: export file", shared.ErrMissingArgument)
	}

	export, err := formatter.ReadCSVExport(path)
	if err != nil {
		return err
	}

	archiver, err := r.archiver(ctx, false)
	if err != nil {
		return err
	}

	res, err := archiver.Import(ctx, export, nil)
	if err != nil {
		return err
	}

	if !res.Changed() {
		r.writePlain("Nothing to import, %s is already archived.\n", res.PlaylistID)
		return nil
	}

	r.writePlain("✓ Imported %s\n", res.PlaylistID)
	if res.PlaylistInserted {
		r.writePlain("  New playlist\n")
	}
	r.writePlain("  Videos added: %d\n", res.VideosInserted)
	r.writePlain("  Items added: %d\n", res.ItemsInserted)
	return nil
}

// Delete removes a playlist, its items and the videos no other playlist references.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	playlistID := strings.TrimSpace(cmd.String("id"))
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	store, err := r.archiveStore()
	if err != nil {
		return err
	}

	removed, err := store.DeletePlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	r.logger.Info("deleted playlist", "playlist", playlistID, "videos_removed", removed)
	r.writePlain("✓ Deleted %s (%d videos removed)\n", playlistID, removed)
	return nil
}
