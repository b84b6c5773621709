package tasks

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/ytarchive/internal/formatter"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
)

// Export formats
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

const maxExportWorkers = 10

// ExportOpts contains configuration for playlist exports.
type ExportOpts struct {
	Format     string // Export format: csv (default), markdown, txt, json
	OutputDir  string // Created when missing
	NumWorkers int    // Concurrent file writers for bulk exports (default: 4)
}

// ExportResult describes the files written for one playlist.
type ExportResult struct {
	PlaylistID string
	Title      string
	Files      []string
	Err        error
}

// BulkExportResult summarizes a multi-playlist export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []ExportResult
}

type exportJob struct {
	export *models.PlaylistExport
}

// ValidFormat reports whether format names a supported export format.
func ValidFormat(format string) bool {
	switch format {
	case "", FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

func (o *ExportOpts) normalize() error {
	if o.Format == "" {
		o.Format = FormatCSV
	}
	if !ValidFormat(o.Format) {
		return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, o.Format)
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = 4
	}
	if o.NumWorkers > maxExportWorkers {
		o.NumWorkers = maxExportWorkers
	}
	if err := os.MkdirAll(o.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// LoadExport reads a playlist and its entries in position order.
func (a *Archiver) LoadExport(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	playlist, err := a.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	entries, err := a.store.ListItems(ctx, playlistID, models.Ascending)
	if err != nil {
		return nil, fmt.Errorf("list items of %s: %w", playlistID, err)
	}

	return &models.PlaylistExport{Playlist: *playlist, Entries: entries}, nil
}

// Export writes one playlist in the requested format.
func (a *Archiver) Export(ctx context.Context, playlistID string, opts ExportOpts) (*ExportResult, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	export, err := a.LoadExport(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	res := writeExport(export, opts)
	if res.Err != nil {
		return nil, res.Err
	}
	return &res, nil
}

// BulkExport exports several playlists and writes an export_manifest.json next to them.
//
// Playlists are read sequentially from the store; files are written by a pool of workers.
// A failed playlist is recorded in the result and does not stop the others.
func (a *Archiver) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts ExportOpts) (*BulkExportResult, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ExportResult, 0, len(ids)),
	}

	jobs := make(chan exportJob, len(ids))
	results := make(chan ExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(&wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, playlistID := range ids {
			if ctx.Err() != nil {
				results <- ExportResult{PlaylistID: playlistID, Err: ctx.Err()}
				continue
			}

			export, err := a.LoadExport(ctx, playlistID)
			if err != nil {
				results <- ExportResult{PlaylistID: playlistID, Err: err}
				continue
			}
			jobs <- exportJob{export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Err == nil {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), models.Playlist{ID: res.PlaylistID, Title: res.Title}, len(res.Files)))
		} else {
			result.FailedExports++
			a.logger.Error("export failed", "playlist", res.PlaylistID, "error", res.Err)
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistID, res.Err))
		}
	}

	order := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := order[id]; !ok {
			order[id] = i
		}
	}
	slices.SortStableFunc(result.Results, func(x, y ExportResult) int {
		return cmp.Compare(order[x.PlaylistID], order[y.PlaylistID])
	})

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(buildManifest(result, opts.Format, a.now()), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func exportWorker(wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- ExportResult, opts ExportOpts) {
	defer wg.Done()
	for job := range jobs {
		results <- writeExport(job.export, opts)
	}
}

// writeExport writes a single playlist to the requested format.
func writeExport(export *models.PlaylistExport, opts ExportOpts) ExportResult {
	result := ExportResult{
		PlaylistID: export.Playlist.ID,
		Title:      export.Playlist.Title,
	}

	switch opts.Format {
	case FormatMarkdown:
		path, err := formatter.WriteMarkdownExport(export, opts.OutputDir)
		if err != nil {
			result.Err = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	case FormatText:
		path, err := formatter.WriteTextExport(export, opts.OutputDir)
		if err != nil {
			result.Err = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	case FormatJSON:
		path, err := formatter.WriteJSONExport(export, opts.OutputDir)
		if err != nil {
			result.Err = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		csvRes, err := formatter.WriteCSVExport(export, opts.OutputDir)
		if err != nil {
			result.Err = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.ItemsFile, csvRes.MetadataFile}
	}
	return result
}

func buildManifest(result *BulkExportResult, format string, generated time.Time) formatter.ExportManifest {
	manifest := formatter.ExportManifest{
		GeneratedAt: generated,
		Format:      format,
		Succeeded:   result.SuccessfulExports,
		Failed:      result.FailedExports,
		Playlists:   make([]formatter.ManifestEntry, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		entry := formatter.ManifestEntry{PlaylistID: res.PlaylistID, Title: res.Title, Files: res.Files}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		manifest.Playlists = append(manifest.Playlists, entry)
	}
	return manifest
}
