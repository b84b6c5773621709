package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/services"
	"github.com/desertthunder/ytarchive/internal/shared"
)

var errNoSource = fmt.Errorf("%w: no playlist source configured", shared.ErrMissingCredentials)

// ArchiverOpts holds the dependencies of an [Archiver].
//
// Source may be nil for offline work (import, export). Zero PageSize means [services.MaxPageSize].
type ArchiverOpts struct {
	Source      services.PlaylistSource
	Store       models.ArchiveStore
	Logger      *log.Logger
	Clock       func() time.Time
	PageSize    int
	ShiftPolicy ShiftPolicy
}

// Archiver decides per playlist between a full first archive and an incremental top-peek update,
// and owns the transaction of each.
type Archiver struct {
	source     services.PlaylistSource
	store      models.ArchiveStore
	logger     *log.Logger
	now        func() time.Time
	pageSize   int
	reconciler *Reconciler
}

// ArchiveResult describes one archived playlist.
type ArchiveResult struct {
	PlaylistID     string
	Title          string
	Mode           models.ArchiveMode
	ItemsAdded     int
	FreshnessToken string
	RunID          string
	Warning        error // freshness could not be checked, the playlist was left untouched
	Err            error // set by ArchiveMany when this playlist failed
}

// PlaylistPreview holds the leading items of a remote playlist.
type PlaylistPreview struct {
	PlaylistID string
	Items      []models.SourceItem
	Err        error
}

// ImportResult counts the rows an import added.
type ImportResult struct {
	PlaylistID       string
	PlaylistInserted bool
	VideosInserted   int
	ItemsInserted    int
	RunID            string
}

// Changed reports whether the import wrote anything.
func (r *ImportResult) Changed() bool {
	return r.PlaylistInserted || r.VideosInserted > 0 || r.ItemsInserted > 0
}

// NewArchiver validates opts and creates an [Archiver].
func NewArchiver(opts ArchiverOpts) (*Archiver, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: archive store", shared.ErrMissingArgument)
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = services.MaxPageSize
	}
	if pageSize < 1 || pageSize > services.MaxPageSize {
		return nil, fmt.Errorf("%w: page size %d outside [1,%d]", shared.ErrInvalidConfig, pageSize, services.MaxPageSize)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Archiver{
		source:     opts.Source,
		store:      opts.Store,
		logger:     logger,
		now:        now,
		pageSize:   pageSize,
		reconciler: NewReconciler(opts.Source, pageSize, opts.ShiftPolicy, now, logger),
	}, nil
}

// ArchivePlaylist archives one playlist. All writes of the call commit together or not at all.
func (a *Archiver) ArchivePlaylist(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*ArchiveResult, error) {
	return a.archive(ctx, playlistID, 1, 1, progress)
}

// ArchiveMany archives playlists one after another, continuing past failures.
// The returned error joins every per-playlist failure.
func (a *Archiver) ArchiveMany(ctx context.Context, ids []string, progress chan<- ProgressUpdate) ([]ArchiveResult, error) {
	results := make([]ArchiveResult, 0, len(ids))
	var errs []error

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := a.archive(ctx, id, i+1, len(ids), progress)
		if err != nil {
			a.logger.Error("archive failed", "playlist", id, "error", err)
			results = append(results, ArchiveResult{PlaylistID: id, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		results = append(results, *res)
	}

	return results, errors.Join(errs...)
}

func (a *Archiver) archive(ctx context.Context, playlistID string, step, total int, progress chan<- ProgressUpdate) (*ArchiveResult, error) {
	if a.source == nil {
		return nil, errNoSource
	}
	if strings.TrimSpace(playlistID) == "" {
		return nil, fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	logger := shared.WithLogger(a.logger, "playlist", playlistID)

	playlist, err := a.store.GetPlaylist(ctx, playlistID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return a.fullArchive(ctx, logger, playlistID, step, total, progress)
	case err != nil:
		return nil, fmt.Errorf("load playlist %s: %w", playlistID, err)
	default:
		return a.incrementalArchive(ctx, logger, playlist, step, total, progress)
	}
}

func (a *Archiver) fullArchive(ctx context.Context, logger *log.Logger, playlistID string, step, total int, progress chan<- ProgressUpdate) (*ArchiveResult, error) {
	started := a.now()
	sendProgress(progress, fetchMetadataUpdate(step, total, playlistID))

	token, err := FetchFreshnessToken(ctx, a.source, playlistID)
	if err != nil {
		return nil, err
	}

	meta, err := a.source.GetMetadata(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata for %s: %w", playlistID, err)
	}

	result := &ArchiveResult{
		PlaylistID:     playlistID,
		Title:          meta.Title,
		Mode:           models.ModeFull,
		FreshnessToken: token,
	}

	err = a.inTx(ctx, logger, func(tx models.ArchiveTx) error {
		if err := tx.UpsertPlaylistMetadata(ctx, models.PlaylistMetadata{
			PlaylistID:     playlistID,
			Title:          &meta.Title,
			CreatedAt:      &started,
			LastUpdatedAt:  started,
			FreshnessToken: token,
		}); err != nil {
			return fmt.Errorf("store playlist: %w", err)
		}

		added, err := a.insertAll(ctx, logger, tx, playlistID, meta.Title, started, progress)
		if err != nil {
			return err
		}
		result.ItemsAdded = added

		return a.recordRun(ctx, tx, result, started)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("archived playlist", "title", meta.Title, "items", result.ItemsAdded)
	sendProgress(progress, commitUpdate(step, total, result))
	return result, nil
}

// insertAll stores every remote item at dense positions in walk order. A repeated video keeps its first position.
func (a *Archiver) insertAll(ctx context.Context, logger *log.Logger, tx models.ArchiveWriter, playlistID, title string, addedAt time.Time, progress chan<- ProgressUpdate) (int, error) {
	position := 0

	for batch, err := range Walk(ctx, a.source, playlistID, a.pageSize, nil) {
		if err != nil {
			return 0, err
		}
		logger.Debug("fetched page", "items", len(batch.Items), "more", batch.Continuation != "")

		for _, item := range batch.Items {
			if err := item.Validate(); err != nil {
				return 0, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
			}

			if _, err := tx.InsertVideoIfAbsent(ctx, item.Video()); err != nil {
				return 0, fmt.Errorf("insert video %s: %w", item.VideoID, err)
			}

			ok, err := tx.InsertItemIfAbsent(ctx, models.PlaylistItem{
				PlaylistID: playlistID,
				VideoID:    item.VideoID,
				Position:   position,
				AddedAt:    addedAt,
			})
			if err != nil {
				return 0, fmt.Errorf("insert item %s: %w", item.VideoID, err)
			}
			if !ok {
				logger.Debug("skipping repeated video", "video", item.VideoID)
				continue
			}
			position++
		}

		sendProgress(progress, fetchItemsUpdate(position, title))
	}

	return position, nil
}

func (a *Archiver) incrementalArchive(ctx context.Context, logger *log.Logger, playlist *models.Playlist, step, total int, progress chan<- ProgressUpdate) (*ArchiveResult, error) {
	result := &ArchiveResult{
		PlaylistID:     playlist.ID,
		Title:          playlist.Title,
		Mode:           models.ModeUnchanged,
		FreshnessToken: playlist.FreshnessToken,
	}

	sendProgress(progress, checkFreshnessUpdate(step, total, playlist.ID))
	fresh, err := CheckForChanges(ctx, a.source, a.store, playlist.ID)
	if err != nil {
		if errors.Is(err, shared.ErrSourceUnavailable) {
			logger.Warn("could not check for changes, assuming unchanged", "error", err)
			result.Warning = err
			return result, nil
		}
		return nil, err
	}

	switch fresh.State {
	case Unchanged:
		logger.Info("no changes", "title", playlist.Title)
		sendProgress(progress, commitUpdate(step, total, result))
		return result, nil
	case NotArchived:
		return nil, fmt.Errorf("%w: %s is archived but has no stored freshness token", shared.ErrInconsistent, playlist.ID)
	}

	started := a.now()
	result.Mode = models.ModeIncremental
	result.FreshnessToken = fresh.Token

	sendProgress(progress, reconcileUpdate(step, total, playlist.ID))
	err = a.inTx(ctx, logger, func(tx models.ArchiveTx) error {
		added, err := a.reconciler.ReconcileTop(ctx, tx, playlist.ID)
		if err != nil {
			return err
		}
		result.ItemsAdded = added

		if err := tx.UpsertPlaylistMetadata(ctx, models.PlaylistMetadata{
			PlaylistID:     playlist.ID,
			LastUpdatedAt:  started,
			FreshnessToken: fresh.Token,
		}); err != nil {
			return fmt.Errorf("update playlist: %w", err)
		}

		return a.recordRun(ctx, tx, result, started)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("updated playlist", "title", playlist.Title, "new_items", result.ItemsAdded)
	sendProgress(progress, commitUpdate(step, total, result))
	return result, nil
}

// Preview walks the first items of each playlist without storing anything.
// count is length-checked against ids. Failures are recorded per playlist and joined in the returned error.
func (a *Archiver) Preview(ctx context.Context, ids []string, count models.ItemCount, progress chan<- ProgressUpdate) ([]PlaylistPreview, error) {
	if a.source == nil {
		return nil, errNoSource
	}
	if err := count.Validate(len(ids)); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	previews := make([]PlaylistPreview, 0, len(ids))
	var errs []error

	for i, id := range ids {
		budget := count.Budget(i)
		n := -1
		if budget != nil {
			n = *budget
		}
		sendProgress(progress, previewUpdate(i+1, len(ids), id, n))

		preview := PlaylistPreview{PlaylistID: id}
		for batch, err := range Walk(ctx, a.source, id, a.pageSize, budget) {
			if err != nil {
				preview.Err = err
				break
			}
			preview.Items = append(preview.Items, batch.Items...)
		}

		if preview.Err != nil {
			a.logger.Error("preview failed", "playlist", id, "error", preview.Err)
			errs = append(errs, fmt.Errorf("%s: %w", id, preview.Err))
		}
		previews = append(previews, preview)
	}

	return previews, errors.Join(errs...)
}

// Import stores an exported playlist with insert-if-absent semantics in one transaction.
// Existing playlist, video and item rows are left as they are.
func (a *Archiver) Import(ctx context.Context, export *models.PlaylistExport, progress chan<- ProgressUpdate) (*ImportResult, error) {
	playlistID := export.Playlist.ID
	if strings.TrimSpace(playlistID) == "" {
		return nil, fmt.Errorf("%w: export has no playlist ID", shared.ErrInvalidInput)
	}

	logger := shared.WithLogger(a.logger, "playlist", playlistID)
	started := a.now()
	result := &ImportResult{PlaylistID: playlistID}

	sendProgress(progress, importUpdate(playlistID, len(export.Entries)))
	err := a.inTx(ctx, logger, func(tx models.ArchiveTx) error {
		ok, err := tx.InsertPlaylistIfAbsent(ctx, export.Playlist)
		if err != nil {
			return fmt.Errorf("insert playlist: %w", err)
		}
		result.PlaylistInserted = ok

		for _, video := range export.Videos() {
			ok, err := tx.InsertVideoIfAbsent(ctx, video)
			if err != nil {
				return fmt.Errorf("insert video %s: %w", video.ID, err)
			}
			if ok {
				result.VideosInserted++
			}
		}

		for _, entry := range export.Entries {
			item := entry.PlaylistItem
			item.PlaylistID = playlistID
			ok, err := tx.InsertItemIfAbsent(ctx, item)
			if err != nil {
				return fmt.Errorf("insert item %s: %w", item.VideoID, err)
			}
			if ok {
				result.ItemsInserted++
			}
		}

		if !result.Changed() {
			return nil
		}

		run := &ArchiveResult{
			PlaylistID:     playlistID,
			Mode:           models.ModeImport,
			ItemsAdded:     result.ItemsInserted,
			FreshnessToken: export.Playlist.FreshnessToken,
		}
		if err := a.recordRun(ctx, tx, run, started); err != nil {
			return err
		}
		result.RunID = run.RunID
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("imported playlist", "videos", result.VideosInserted, "items", result.ItemsInserted)
	return result, nil
}

func (a *Archiver) inTx(ctx context.Context, logger *log.Logger, fn func(models.ArchiveTx) error) error {
	tx, err := a.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (a *Archiver) recordRun(ctx context.Context, tx models.ArchiveWriter, result *ArchiveResult, started time.Time) error {
	run := models.ArchiveRun{
		ID:             shared.GenerateID(),
		PlaylistID:     result.PlaylistID,
		Mode:           result.Mode,
		ItemsAdded:     result.ItemsAdded,
		FreshnessToken: result.FreshnessToken,
		StartedAt:      started,
		FinishedAt:     a.now(),
	}
	if err := tx.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	result.RunID = run.ID
	return nil
}
