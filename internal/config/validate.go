package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/enrichr/internal/engine/batch"
	"github.com/rshade/enrichr/internal/logging"
	"github.com/rshade/enrichr/internal/table"
	"github.com/rshade/enrichr/pkg/version"
)

// Validate reports every problem with c at once. Each error wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if ok, err := version.Satisfies(c.Requires); err != nil {
		fail("requires: %v", err)
	} else if !ok {
		fail("requires %q but this is enrichr %s", c.Requires, version.GetVersion())
	}

	j := c.Job
	if j.Input == "" {
		fail("job.input is required")
	}
	if j.KeyColumn == "" {
		fail("job.key_column is required")
	}
	if j.TargetColumn == "" {
		fail("job.target_column is required")
	}
	if j.ResponseKey == "" {
		fail("job.response_key is required")
	}
	if len(j.Fields) == 0 {
		fail("job.fields needs at least one mapping")
	}
	targetMapped := false
	seen := make(map[string]bool, len(j.Fields))
	for i, f := range j.Fields {
		if f.Response == "" || f.Column == "" {
			fail("job.fields[%d] needs both response and column", i)
		}
		if seen[f.Column] {
			fail("job.fields[%d] writes column %q twice", i, f.Column)
		}
		seen[f.Column] = true
		if f.Column == j.TargetColumn {
			targetMapped = true
		}
		if f.Column == j.KeyColumn && f.Column != "" {
			fail("job.fields[%d] would overwrite the key column %q", i, f.Column)
		}
	}
	if len(j.Fields) > 0 && j.TargetColumn != "" && !targetMapped {
		fail("job.target_column %q is not written by any field", j.TargetColumn)
	}
	if j.ChunkSize < batch.MinChunkSize || j.ChunkSize > batch.MaxChunkSize {
		fail("job.chunk_size %d must be between %d and %d", j.ChunkSize, batch.MinChunkSize, batch.MaxChunkSize)
	}
	if j.MaxWorkers < 1 || j.MaxWorkers > batch.MaxWorkers {
		fail("job.max_workers %d must be between 1 and %d", j.MaxWorkers, batch.MaxWorkers)
	}
	switch table.DuplicatePolicy(j.DuplicateKeys) {
	case table.DuplicateUpdateAll, table.DuplicateReject, "":
	default:
		fail("job.duplicate_keys %q must be %q or %q", j.DuplicateKeys, table.DuplicateUpdateAll, table.DuplicateReject)
	}

	l := c.Lookup
	if l.Provider != DefaultProvider {
		fail("lookup.provider %q is not supported (only %q)", l.Provider, DefaultProvider)
	}
	if l.Prompt == "" && l.PromptFile == "" {
		fail("lookup.prompt or lookup.prompt_file is required")
	}
	if l.RequestsPerMinute < 0 {
		fail("lookup.requests_per_minute must not be negative")
	}
	if l.Timeout < 0 {
		fail("lookup.timeout must not be negative")
	}
	if l.Temperature != nil && (*l.Temperature < 0 || *l.Temperature > 2) {
		fail("lookup.temperature %.2f must be between 0 and 2", *l.Temperature)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		fail("logging.level %q is not a log level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case logging.FormatConsole, logging.FormatJSON, "text":
	default:
		fail("logging.format %q must be %q or %q", c.Logging.Format, logging.FormatConsole, logging.FormatJSON)
	}

	return errors.Join(errs...)
}
