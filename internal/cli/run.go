package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/enrichr/internal/config"
	"github.com/rshade/enrichr/internal/engine"
	"github.com/rshade/enrichr/internal/engine/batch"
	"github.com/rshade/enrichr/internal/logging"
	"github.com/rshade/enrichr/internal/lookup"
	"github.com/rshade/enrichr/internal/metrics"
	"github.com/rshade/enrichr/internal/table"
	"github.com/rshade/enrichr/internal/tui"
)

// runFlags are the flags of the run command.
type runFlags struct {
	job            jobFlags
	progress       bool
	model          string
	search         bool
	pushgatewayURL string
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enrich every unprocessed row of the table",
		Long: `Looks up the unprocessed rows of the table in chunks and writes the table
back after every chunk that produced results. A row is unprocessed while its
target column is empty, so an interrupted run resumes where it stopped. When
the output file already exists the run starts from it; --fresh starts over
from the input.

Failed lookups leave their rows empty for the next run; they never stop the run.`,
		Example: `  # Enrich in place with the cik profile
  enrichr run --profile cik --input companies.csv

  # Write to a separate file; running it again continues from that file
  enrichr run --profile cik --input companies.csv --output enriched.csv

  # Live progress bar
  enrichr run --profile parent --input facilities.csv --progress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnrich(cmd, a, &f)
		},
	}

	f.job.register(cmd)
	cmd.Flags().BoolVar(&f.progress, "progress", false, "show a live progress view (terminal only)")
	cmd.Flags().StringVar(&f.model, "model", "", "Gemini model name")
	cmd.Flags().BoolVar(&f.search, "search", true, "let the model ground answers with Google Search")
	cmd.Flags().StringVar(&f.pushgatewayURL, "pushgateway-url", "", "push run metrics to this Prometheus Pushgateway")
	return cmd
}

func runEnrich(cmd *cobra.Command, a *app, f *runFlags) error {
	cfg, err := a.jobConfig(cmd, &f.job)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("model") {
		cfg.Lookup.Model = f.model
	}
	if cmd.Flags().Changed("search") {
		cfg.Lookup.Search = f.search
	}
	if cmd.Flags().Changed("pushgateway-url") {
		cfg.Metrics.PushgatewayURL = f.pushgatewayURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tbl, _, err := loadTable(ctx, cfg.Job, f.job.fresh)
	if err != nil {
		return err
	}

	adapter, closer, err := a.opts.NewAdapter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating lookup adapter: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	profile := cfg.Profile
	if profile == "" {
		profile = "custom"
	}
	recorder := metrics.NewRecorder(profile)

	opts := engine.Options{
		KeyColumn:    cfg.Job.KeyColumn,
		TargetColumn: cfg.Job.TargetColumn,
		ResponseKey:  cfg.Job.ResponseKey,
		Fields:       cfg.Job.Fields,
		ChunkSize:    cfg.Job.ChunkSize,
		MaxWorkers:   cfg.Job.MaxWorkers,
		OutputPath:   cfg.Job.OutputPath(),
		Metrics:      recorder,
	}

	var sum *engine.Summary
	if f.progress && a.opts.Styled() {
		sum, err = runWithProgress(ctx, cmd, a, tbl, adapter, opts)
	} else {
		var eng *engine.Engine
		eng, err = engine.New(tbl, adapter, opts)
		if err != nil {
			return err
		}
		sum, err = eng.Run(ctx)
	}
	if sum == nil {
		return err
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(sum, a.opts.Styled()))
	pushMetrics(cmd.Context(), cfg, recorder)

	if err != nil {
		return err
	}
	if sum.Interrupted {
		return &ExitError{Code: ExitInterrupted, Err: fmt.Errorf("%w: %d rows left for the next run", ErrInterrupted, sum.RowsRemaining)}
	}
	return nil
}

// runWithProgress runs the engine behind the live progress view.
func runWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	a *app,
	tbl *table.Table,
	adapter lookup.Adapter,
	opts engine.Options,
) (*engine.Summary, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Console logs would tear the view apart; keep only warnings and worse
	// unless logs already go to a file.
	if a.logResult == nil || !a.logResult.UsingFile {
		quiet := logging.FromContext(runCtx).Level(zerolog.WarnLevel)
		runCtx = quiet.WithContext(runCtx)
	}

	var program *tea.Program
	opts.Observer = func(s batch.ProgressSnapshot) {
		program.Send(tui.ProgressMsg{Snapshot: s})
	}
	eng, err := engine.New(tbl, adapter, opts)
	if err != nil {
		return nil, err
	}

	chunks := eng.Plan()
	keys := 0
	for _, c := range chunks {
		keys += len(c.Items)
	}
	model := tui.NewRunModel("Enriching "+opts.OutputPath, keys, len(chunks), cancel)
	program = tea.NewProgram(model, tea.WithOutput(cmd.ErrOrStderr()), tea.WithContext(ctx))

	done := make(chan tui.DoneMsg, 1)
	go func() {
		sum, runErr := eng.Run(runCtx)
		msg := tui.DoneMsg{Summary: sum, Err: runErr}
		done <- msg
		program.Send(msg)
	}()

	if _, err = program.Run(); err != nil {
		// The view failed; the run keeps going without it.
		logger.Warn().Ctx(runCtx).Err(err).Msg("progress view stopped")
	}
	res := <-done
	return res.Summary, res.Err
}

// pushMetrics pushes the run metrics when a Pushgateway is configured.
// Failures are logged only.
func pushMetrics(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := rec.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		logger.Warn().Ctx(ctx).Err(err).Msg("could not push metrics")
		return
	}
	logger.Debug().Ctx(ctx).Str("url", cfg.Metrics.PushgatewayURL).Msg("metrics pushed")
}
