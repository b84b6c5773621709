package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/repositories"
	"github.com/desertthunder/ytarchive/internal/services"
	"github.com/desertthunder/ytarchive/internal/shared"
	"github.com/desertthunder/ytarchive/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and the YouTube source are opened on first use so that commands which
// need neither (setup, help) work without a database or credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	source     services.PlaylistSource
	store      models.ArchiveStore
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer

	configMissing bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Source     services.PlaylistSource
	Store      models.ArchiveStore
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		source:     opts.Source,
		store:      opts.Store,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, archiveCommand, peekCommand, listCommand, openCommand, searchCommand,
		exportCommand, importCommand, deleteCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// flags returns the global flags, inherited by every subcommand.
func (r *Runner) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("YTARCHIVE_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// Before loads the configuration named by --config and applies the log level.
// A missing default config.toml falls back to the embedded defaults. A missing file
// passed explicitly is reported by the first command that needs the store or the source.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	_, statErr := os.Stat(r.configPath)
	switch {
	case statErr == nil:
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, fmt.Errorf("%w: %s: %v", shared.ErrInvalidConfig, r.configPath, err)
		}
		r.config = config
	case cmd.IsSet("config"):
		r.configMissing = true
		r.logger.Debug("config file not found", "path", r.configPath)
	default:
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else if err := shared.SetLogLevelString(r.logger, r.config.Log.Level); err != nil {
		return ctx, fmt.Errorf("%w: log.level %q", err, r.config.Log.Level)
	}

	return ctx, nil
}

// SetLogger replaces the logger, e.g. to keep log output away from the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database connection, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.store = nil
	return err
}

// requireConfig fails when --config named a file that does not exist.
func (r *Runner) requireConfig() error {
	if r.configMissing {
		return fmt.Errorf("%w: %s (run setup config to create it)", shared.ErrMissingConfig, r.configPath)
	}
	return nil
}

// archiveStore opens the configured database and applies pending migrations.
func (r *Runner) archiveStore() (models.ArchiveStore, error) {
	if r.store != nil {
		return r.store, nil
	}
	if err := r.requireConfig(); err != nil {
		return nil, err
	}

	db, err := shared.OpenArchive(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", r.config.Database.Path, err)
	}
	r.db = db
	r.store = repositories.NewArchiveRepository(db)
	r.logger.Debug("opened archive", "path", r.config.Database.Path)
	return r.store, nil
}

// playlistSource builds the YouTube source from the configured credentials.
func (r *Runner) playlistSource(ctx context.Context) (services.PlaylistSource, error) {
	if r.source != nil {
		return r.source, nil
	}
	if err := r.requireConfig(); err != nil {
		return nil, err
	}

	src, err := services.NewYouTubeSourceFromConfig(ctx, r.config)
	if err != nil {
		return nil, err
	}
	r.source = src
	return r.source, nil
}

// archiver wires the store and, when withSource is set, the playlist source into a [tasks.Archiver].
func (r *Runner) archiver(ctx context.Context, withSource bool) (*tasks.Archiver, error) {
	store, err := r.archiveStore()
	if err != nil {
		return nil, err
	}

	var src services.PlaylistSource
	if withSource {
		if src, err = r.playlistSource(ctx); err != nil {
			return nil, err
		}
	}

	policy, err := tasks.ParseShiftPolicy(r.config.Archive.ShiftPolicy)
	if err != nil {
		return nil, err
	}

	return tasks.NewArchiver(tasks.ArchiverOpts{
		Source:      src,
		Store:       store,
		Logger:      r.logger,
		PageSize:    r.config.Archive.PageSize,
		ShiftPolicy: policy,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
