package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete seal configuration (v1 schema)
type Config struct {
	Version    int    `json:"version" mapstructure:"version"`
	SourceRoot string `json:"sourceRoot" mapstructure:"sourceRoot"`

	Snapshot SnapshotConfig `json:"snapshot" mapstructure:"snapshot"`
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	Rewrite  RewriteConfig  `json:"rewrite" mapstructure:"rewrite"`
	Tidy     TidyConfig     `json:"tidy" mapstructure:"tidy"`
	Journal  JournalConfig  `json:"journal" mapstructure:"journal"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// SnapshotConfig locates the program snapshot to analyze
type SnapshotConfig struct {
	// Path points at program.json, program.json.zst, or index.scip
	Path string `json:"path" mapstructure:"path"`
	// Format is auto, json, zstd, or scip; auto sniffs from the extension
	Format string `json:"format" mapstructure:"format"`
	// ManifestPath points at program.toml (required for scip snapshots)
	ManifestPath string `json:"manifestPath" mapstructure:"manifestPath"`
}

// AnalysisConfig tunes the whole-program pass
type AnalysisConfig struct {
	// Workers caps concurrent per-document scans; 0 means GOMAXPROCS
	Workers int `json:"workers" mapstructure:"workers"`
	// CacheSize is the number of finalized verdict sets kept across snapshots
	CacheSize int `json:"cacheSize" mapstructure:"cacheSize"`
}

// RewriteConfig tunes declaration rewriting
type RewriteConfig struct {
	// Validate re-parses rewritten documents before returning them
	Validate bool `json:"validate" mapstructure:"validate"`
}

// TidyConfig selects the local single-file rules
type TidyConfig struct {
	Rules []string `json:"rules" mapstructure:"rules"`
}

// JournalConfig controls run recording
type JournalConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// KnownSnapshotFormats lists the accepted snapshot.format values.
var KnownSnapshotFormats = []string{"auto", "json", "zstd", "scip"}

// KnownTidyRules lists the accepted tidy.rules entries.
var KnownTidyRules = []string{"directives", "assertions"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:    1,
		SourceRoot: ".",
		Snapshot: SnapshotConfig{
			Path:         ".seal/program.json",
			Format:       "auto",
			ManifestPath: ".seal/program.toml",
		},
		Analysis: AnalysisConfig{
			Workers:   0,
			CacheSize: 4,
		},
		Rewrite: RewriteConfig{
			Validate: true,
		},
		Tidy: TidyConfig{
			Rules: []string{"directives", "assertions"},
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .seal/config.json
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("version", 1)
	v.SetDefault("sourceRoot", ".")

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".seal"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyMissingDefaults(&cfg)

	return &cfg, nil
}

// applyMissingDefaults fills zero values that have non-zero defaults.
func applyMissingDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = def.Snapshot.Path
	}
	if cfg.Snapshot.Format == "" {
		cfg.Snapshot.Format = def.Snapshot.Format
	}
	if cfg.Analysis.CacheSize == 0 {
		cfg.Analysis.CacheSize = def.Analysis.CacheSize
	}
	if cfg.Tidy.Rules == nil {
		cfg.Tidy.Rules = def.Tidy.Rules
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

// Save writes the configuration to .seal/config.json
func (c *Config) Save(root string) error {
	configPath := filepath.Join(root, ".seal", "config.json")

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(configPath, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Snapshot.Path == "" {
		return &ConfigError{Field: "snapshot.path", Message: "snapshot path is required"}
	}
	if !contains(KnownSnapshotFormats, c.Snapshot.Format) {
		return &ConfigError{Field: "snapshot.format", Message: "unknown snapshot format"}
	}
	if c.Analysis.Workers < 0 {
		return &ConfigError{Field: "analysis.workers", Message: "workers must be >= 0"}
	}
	if c.Analysis.CacheSize < 1 {
		return &ConfigError{Field: "analysis.cacheSize", Message: "cacheSize must be >= 1"}
	}
	for _, rule := range c.Tidy.Rules {
		if !contains(KnownTidyRules, rule) {
			return &ConfigError{Field: "tidy.rules", Message: "unknown rule: " + rule}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
