package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/enrichr/internal/config"
	"github.com/rshade/enrichr/internal/lookup"
	"github.com/rshade/enrichr/internal/table"
)

// jobFlags override the job section of the configuration.
type jobFlags struct {
	input        string
	output       string
	keyColumn    string
	targetColumn string
	chunkSize    int
	maxWorkers   int
	fresh        bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "input table (.csv, .tsv, .xlsx, optionally .gz/.zst/.xz)")
	fs.StringVarP(&f.output, "output", "o", "", "output table (default: overwrite the input)")
	fs.StringVar(&f.keyColumn, "key-column", "", "column holding the names to look up")
	fs.StringVar(&f.targetColumn, "target-column", "", "column that marks a row as processed once filled")
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "names per lookup")
	fs.IntVar(&f.maxWorkers, "max-workers", 0, "concurrent lookups")
	fs.BoolVar(&f.fresh, "fresh", false, "start from the input even when the output file already exists")
}

// apply copies explicitly set flags onto cfg; flags beat env and file.
func (f *jobFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.Job.Input = f.input
	}
	if fs.Changed("output") {
		cfg.Job.Output = f.output
	}
	if fs.Changed("key-column") {
		cfg.Job.KeyColumn = f.keyColumn
	}
	if fs.Changed("target-column") {
		cfg.Job.TargetColumn = f.targetColumn
	}
	if fs.Changed("chunk-size") {
		cfg.Job.ChunkSize = f.chunkSize
	}
	if fs.Changed("max-workers") {
		cfg.Job.MaxWorkers = f.maxWorkers
	}
}

// jobConfig returns the validated configuration with flags applied.
func (a *app) jobConfig(cmd *cobra.Command, f *jobFlags) (*config.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPath picks the file a run starts from: the output when it exists, so
// rows enriched by an earlier run are kept, the input otherwise or when fresh
// is set.
func loadPath(job config.JobConfig, fresh bool) string {
	out := job.OutputPath()
	if !fresh && out != job.Input {
		if _, err := os.Stat(out); err == nil {
			return out
		}
	}
	return job.Input
}

// loadTable loads the table a job works on.
func loadTable(ctx context.Context, job config.JobConfig, fresh bool) (*table.Table, string, error) {
	path := loadPath(job, fresh)
	tbl, err := table.Load(path, job.TableOptions())
	if err != nil {
		return nil, path, err
	}
	logger.Info().Ctx(ctx).
		Str("path", path).
		Int("rows", tbl.Len()).
		Strs("columns", tbl.Header()).
		Msg("table loaded")
	return tbl, path, nil
}

// newGeminiAdapter is the production AdapterFactory.
func newGeminiAdapter(ctx context.Context, cfg *config.Config) (lookup.Adapter, io.Closer, error) {
	prompt, err := lookup.LoadPrompt(cfg.Lookup.Prompt, cfg.Lookup.PromptFile)
	if err != nil {
		return nil, nil, err
	}

	key := cfg.Lookup.APIKey(os.Getenv)
	if key == "" {
		return nil, nil, fmt.Errorf("%w: set %s or add it to .env", lookup.ErrMissingAPIKey, cfg.Lookup.APIKeyEnv)
	}

	gemini, err := lookup.NewGemini(ctx, lookup.GeminiConfig{
		APIKey:      key,
		Model:       cfg.Lookup.Model,
		Temperature: cfg.Lookup.Temperature,
		Prompt:      prompt,
		Search:      cfg.Lookup.Search,
	})
	if err != nil {
		return nil, nil, err
	}

	var adapter lookup.Adapter = lookup.WithTimeout(gemini, cfg.Lookup.Timeout)
	adapter = lookup.RateLimited(adapter, cfg.Lookup.RequestsPerMinute)
	return adapter, nil, nil
}

var errNoLookup = errors.New("lookups are disabled for this command")

// noLookup is the adapter for commands that must never call the service.
func noLookup() lookup.Adapter {
	return lookup.Func(func(context.Context, []string) ([]lookup.Record, error) {
		return nil, errNoLookup
	})
}
