// Package config loads enrichr's YAML configuration, layers profiles,
// environment variables and flags on top of it, and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/enrichr/internal/engine"
	"github.com/rshade/enrichr/internal/engine/batch"
	"github.com/rshade/enrichr/internal/table"
)

// Defaults.
const (
	DefaultConfigFile  = "enrichr.yaml"
	DefaultProvider    = "gemini"
	DefaultAPIKeyEnv   = "GEMINI_API_KEY"
	DefaultPrompt      = "cik"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultMetricsJob  = "enrichr"
	DefaultLookupLimit = 0
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full enrichr configuration.
type Config struct {
	// Requires is a semver constraint the binary version must satisfy.
	Requires string `yaml:"requires,omitempty"`
	// Profile names the built-in profile the file builds on.
	Profile string        `yaml:"profile,omitempty"`
	Job     JobConfig     `yaml:"job"`
	Lookup  LookupConfig  `yaml:"lookup"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// JobConfig describes the table and how results map onto it.
type JobConfig struct {
	Input         string                `yaml:"input,omitempty"`
	Output        string                `yaml:"output,omitempty"`
	KeyColumn     string                `yaml:"key_column,omitempty"`
	TargetColumn  string                `yaml:"target_column,omitempty"`
	ResponseKey   string                `yaml:"response_key,omitempty"`
	Fields        []engine.FieldMapping `yaml:"fields,omitempty"`
	ChunkSize     int                   `yaml:"chunk_size,omitempty"`
	MaxWorkers    int                   `yaml:"max_workers,omitempty"`
	DuplicateKeys string                `yaml:"duplicate_keys,omitempty"`
}

// LookupConfig configures the lookup service.
type LookupConfig struct {
	Provider          string        `yaml:"provider,omitempty"`
	Model             string        `yaml:"model,omitempty"`
	APIKeyEnv         string        `yaml:"api_key_env,omitempty"`
	Prompt            string        `yaml:"prompt,omitempty"`
	PromptFile        string        `yaml:"prompt_file,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	Temperature       *float32      `yaml:"temperature,omitempty"`
	// Search grounds answers with Google Search.
	Search bool `yaml:"search"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}

// MetricsConfig configures the end-of-run Pushgateway push.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url,omitempty"`
	Job            string `yaml:"job,omitempty"`
}

// Default returns the built-in configuration. It has no input and no column
// layout, so it only validates once a profile or file supplies them.
func Default() *Config {
	return &Config{
		Job: JobConfig{
			ChunkSize:     batch.DefaultChunkSize,
			MaxWorkers:    batch.DefaultWorkers,
			DuplicateKeys: string(table.DuplicateUpdateAll),
		},
		Lookup: LookupConfig{
			Provider:  DefaultProvider,
			APIKeyEnv: DefaultAPIKeyEnv,
			Prompt:    DefaultPrompt,
			Timeout:   2 * time.Minute, //nolint:mnd // Long prompts routinely take a minute.
			Search:    true,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Job: DefaultMetricsJob,
		},
	}
}

// Load builds a Config from the built-in defaults, the profile and the YAML
// file at path, in that order. profile overrides the file's own "profile"
// key. An empty path skips the file.
func Load(path, profile string) (*Config, error) {
	cfg := Default()

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if profile == "" && len(data) > 0 {
		var head struct {
			Profile string `yaml:"profile"`
		}
		if err := yaml.Unmarshal(data, &head); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		profile = head.Profile
	}

	if profile != "" {
		if err := cfg.ApplyProfile(profile); err != nil {
			return nil, err
		}
	}

	if len(data) > 0 {
		if err := MergeYAML(cfg, data); err != nil {
			return nil, fmt.Errorf("applying config %s: %w", path, err)
		}
	}
	if profile != "" {
		cfg.Profile = profile
	}
	return cfg, nil
}

// ResolvePath returns the config file to use: flagValue, then $ENRICHR_CONFIG,
// then ./enrichr.yaml when it exists. It returns "" when there is none.
func ResolvePath(flagValue string, getenv func(string) string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := getenv(EnvPrefix + "CONFIG"); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Save writes cfg to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err = os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// OutputPath returns the configured output, defaulting to the input path.
func (j JobConfig) OutputPath() string {
	if j.Output != "" {
		return j.Output
	}
	return j.Input
}

// TableOptions returns the table load options for the job.
func (j JobConfig) TableOptions() table.Options {
	ensure := make([]string, 0, len(j.Fields)+1)
	ensure = append(ensure, j.TargetColumn)
	for _, f := range j.Fields {
		if f.Column != j.TargetColumn {
			ensure = append(ensure, f.Column)
		}
	}
	return table.Options{
		KeyColumn:     j.KeyColumn,
		EnsureColumns: ensure,
		Duplicates:    table.DuplicatePolicy(j.DuplicateKeys),
	}
}

// APIKey reads the lookup API key from the configured environment variable.
func (l LookupConfig) APIKey(getenv func(string) string) string {
	name := l.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return getenv(name)
}
