package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Archive     ArchiveConfig     `toml:"archive"`
	Search      SearchConfig      `toml:"search"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig contains YouTube Data API credentials.
//
// APIKey is enough for public and unlisted playlists. TokenFile points at a
// saved OAuth2 token (JSON) and is used together with ClientID/ClientSecret
// for private playlists.
type YouTubeConfig struct {
	APIKey       string `toml:"api_key"`
	TokenFile    string `toml:"token_file"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Endpoint     string `toml:"endpoint"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ArchiveConfig controls the synchronization engine.
type ArchiveConfig struct {
	PageSize          int     `toml:"page_size"`
	ShiftPolicy       string  `toml:"shift_policy"`
	ExportDir         string  `toml:"export_dir"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SearchConfig contains fuzzy search defaults. A nil Cutoff means unset; zero is a valid cutoff.
type SearchConfig struct {
	Cutoff *float64 `toml:"cutoff"`
	Limit  int     `toml:"limit"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file fall back to the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks value ranges that would otherwise surface deep inside the engine.
func (c *Config) Validate() error {
	if c.Archive.PageSize < 1 || c.Archive.PageSize > 50 {
		return fmt.Errorf("%w: archive.page_size must be within [1,50], got %d", ErrInvalidConfig, c.Archive.PageSize)
	}
	switch c.Archive.ShiftPolicy {
	case "", "head", "legacy":
	default:
		return fmt.Errorf("%w: archive.shift_policy must be \"head\" or \"legacy\", got %q", ErrInvalidConfig, c.Archive.ShiftPolicy)
	}
	if cutoff := c.Search.Cutoff; cutoff != nil && (*cutoff < 0 || *cutoff > 1) {
		return fmt.Errorf("%w: search.cutoff must be within [0,1], got %v", ErrInvalidConfig, *cutoff)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
