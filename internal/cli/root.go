// Package cli implements the enrichr command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/enrichr/internal/config"
	"github.com/rshade/enrichr/internal/logging"
	"github.com/rshade/enrichr/internal/lookup"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// AdapterFactory builds the lookup adapter for a run. The returned closer, if
// any, is closed when the run ends.
type AdapterFactory func(ctx context.Context, cfg *config.Config) (lookup.Adapter, io.Closer, error)

// Options are the injectable dependencies of the root command.
type Options struct {
	// Getenv reads environment variables.
	Getenv func(string) string
	// NewAdapter builds the lookup adapter.
	NewAdapter AdapterFactory
	// Styled reports whether stdout is a terminal that can take colour.
	Styled func() bool
}

// DefaultOptions returns the production dependencies.
func DefaultOptions() Options {
	return Options{
		Getenv:     os.Getenv,
		NewAdapter: newGeminiAdapter,
		Styled:     func() bool { return isTerminal(os.Stdout) },
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	profile    string
	envFile    string
	logLevel   string
	logFormat  string
	debug      bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	opts      Options
	flags     globalFlags
	cfg       *config.Config
	cfgPath   string
	cfgErr    error
	logResult *logging.LogPathResult
}

// NewRootCmd creates the root Cobra command for the enrichr CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithOptions(ver, DefaultOptions())
}

// NewRootCmdWithOptions creates the root command with explicit dependencies
// for testability.
func NewRootCmdWithOptions(ver string, opts Options) *cobra.Command {
	defaults := DefaultOptions()
	if opts.Getenv == nil {
		opts.Getenv = defaults.Getenv
	}
	if opts.NewAdapter == nil {
		opts.NewAdapter = defaults.NewAdapter
	}
	if opts.Styled == nil {
		opts.Styled = defaults.Styled
	}
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:           "enrichr",
		Short:         "Resumable batch enrichment of tabular data",
		Long:          "enrichr fills empty columns of a CSV, TSV or XLSX table by looking rows up in batches through an LLM, checkpointing after every batch.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.loadConfig()
			result := setupLogging(cmd, a)
			a.logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, a.logResult)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "config file (default $ENRICHR_CONFIG or ./enrichr.yaml)")
	pf.StringVarP(&a.flags.profile, "profile", "p", "", "built-in profile to start from (see 'enrichr profiles')")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "dotenv file with API keys, skipped when missing")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: console or json")
	pf.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(a),
		newPlanCmd(a),
		newStatusCmd(a),
		newConfigCmd(a),
		newProfilesCmd(),
	)
	return cmd
}

// loadConfig resolves and loads the configuration. Failures are kept in
// cfgErr so commands that do not need a valid config can still run.
func (a *app) loadConfig() {
	if err := config.LoadDotEnv(a.flags.envFile); err != nil {
		a.cfgErr = err
	}

	a.cfgPath = config.ResolvePath(a.flags.configPath, a.opts.Getenv)
	cfg, err := config.Load(a.cfgPath, a.flags.profile)
	if err != nil {
		a.cfg = config.Default()
		a.cfgErr = err
		return
	}
	if err = cfg.ApplyEnv(a.opts.Getenv); err != nil {
		a.cfgErr = err
	}
	a.cfg = cfg
}

// config returns the loaded configuration or the error that prevented it.
func (a *app) config() (*config.Config, error) {
	if a.cfgErr != nil {
		return nil, a.cfgErr
	}
	return a.cfg, nil
}

const rootCmdExample = `  # Enrich companies with SEC CIKs using the built-in profile
  enrichr run --profile cik --input companies.csv

  # Write to a separate file; the next run continues from it
  enrichr run --profile parent --input facilities.xlsx --output facilities.enriched.xlsx

  # Show how the remaining rows would be chunked without calling the model
  enrichr plan --profile cik --input companies.csv

  # Count processed and unprocessed rows
  enrichr status --profile cik --input companies.csv

  # Write a starter configuration file
  enrichr config init --profile cik`
