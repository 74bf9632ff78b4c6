package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ENRICHR_"

// ApplyEnv overrides c with ENRICHR_* variables read through getenv.
// Unparseable numbers are reported, not ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, EnvPrefix, name, v))
			return
		}
		*dst = n
	}

	str("INPUT", &c.Job.Input)
	str("OUTPUT", &c.Job.Output)
	str("KEY_COLUMN", &c.Job.KeyColumn)
	str("TARGET_COLUMN", &c.Job.TargetColumn)
	str("RESPONSE_KEY", &c.Job.ResponseKey)
	num("CHUNK_SIZE", &c.Job.ChunkSize)
	num("MAX_WORKERS", &c.Job.MaxWorkers)
	str("DUPLICATE_KEYS", &c.Job.DuplicateKeys)

	str("MODEL", &c.Lookup.Model)
	str("API_KEY_ENV", &c.Lookup.APIKeyEnv)
	str("PROMPT", &c.Lookup.Prompt)
	str("PROMPT_FILE", &c.Lookup.PromptFile)
	num("REQUESTS_PER_MINUTE", &c.Lookup.RequestsPerMinute)
	if v := getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %sTIMEOUT=%q: %w", ErrInvalidConfig, EnvPrefix, v, err))
		} else {
			c.Lookup.Timeout = d
		}
	}

	if v := getenv(EnvPrefix + "SEARCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %sSEARCH=%q is not a boolean", ErrInvalidConfig, EnvPrefix, v))
		} else {
			c.Lookup.Search = b
		}
	}

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("LOG_FILE", &c.Logging.File)

	str("PUSHGATEWAY_URL", &c.Metrics.PushgatewayURL)
	str("METRICS_JOB", &c.Metrics.Job)

	return errors.Join(errs...)
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
