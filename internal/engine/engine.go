package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/enrichr/internal/engine/batch"
	"github.com/rshade/enrichr/internal/logging"
	"github.com/rshade/enrichr/internal/lookup"
	"github.com/rshade/enrichr/internal/metrics"
	"github.com/rshade/enrichr/internal/table"
)

// Configuration errors returned by New.
var (
	ErrNilTable       = errors.New("engine requires a table")
	ErrNilAdapter     = errors.New("engine requires a lookup adapter")
	ErrNoTarget       = errors.New("target column is not set")
	ErrNoResponseKey  = errors.New("response key is not set")
	ErrNoFields       = errors.New("at least one field mapping is required")
	ErrTargetUnmapped = errors.New("target column is not written by any field mapping")
	ErrKeyColumn      = errors.New("key column does not match the table key")
	ErrNoOutput       = errors.New("output path is not set")
)

// PersistFunc writes the whole table to path.
type PersistFunc func(path string) error

// Observer is notified on the coordinating goroutine after every chunk has
// been merged.
type Observer func(batch.ProgressSnapshot)

// Options configures an Engine.
type Options struct {
	// KeyColumn must equal the table's key column. Empty means "use the table's".
	KeyColumn    string
	TargetColumn string
	ResponseKey  string
	Fields       []FieldMapping
	ChunkSize    int
	MaxWorkers   int
	OutputPath   string

	// Persister defaults to the table's own Persist.
	Persister PersistFunc
	Metrics   *metrics.Recorder
	Observer  Observer
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	OutputPath string

	ChunksTotal     int
	ChunksSucceeded int
	ChunksEmpty     int
	ChunksFailed    int
	ChunksCancelled int

	RowsSelected  int
	KeysSelected  int
	RowsEnriched  int
	RowsRemaining int
	StaleKeys     int

	Persists        int
	PersistFailures int

	Elapsed     time.Duration
	Interrupted bool
}

// ErrUnsaved is returned by Run when merged rows could not be written even by
// the final flush. The in-memory table still holds them.
var ErrUnsaved = errors.New("enriched rows could not be persisted")

// Engine runs enrichment over one table.
type Engine struct {
	tbl     *table.Table
	adapter lookup.Adapter
	opts    Options
}

// New validates opts and returns an Engine.
func New(tbl *table.Table, adapter lookup.Adapter, opts Options) (*Engine, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	if opts.KeyColumn == "" {
		opts.KeyColumn = tbl.KeyColumn()
	}
	if opts.KeyColumn != tbl.KeyColumn() {
		return nil, fmt.Errorf("%w: %q vs %q", ErrKeyColumn, opts.KeyColumn, tbl.KeyColumn())
	}
	if opts.TargetColumn == "" {
		return nil, ErrNoTarget
	}
	if opts.ResponseKey == "" {
		return nil, ErrNoResponseKey
	}
	if len(opts.Fields) == 0 {
		return nil, ErrNoFields
	}
	if !mapsTarget(opts.Fields, opts.TargetColumn) {
		return nil, fmt.Errorf("%w: %s", ErrTargetUnmapped, opts.TargetColumn)
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = batch.DefaultChunkSize
	}
	if opts.ChunkSize < batch.MinChunkSize || opts.ChunkSize > batch.MaxChunkSize {
		return nil, fmt.Errorf("chunk size %d out of range [%d, %d]",
			opts.ChunkSize, batch.MinChunkSize, batch.MaxChunkSize)
	}
	if opts.MaxWorkers == 0 {
		opts.MaxWorkers = batch.DefaultWorkers
	}
	if opts.MaxWorkers < 1 || opts.MaxWorkers > batch.MaxWorkers {
		return nil, fmt.Errorf("%w: %d", batch.ErrInvalidWorkers, opts.MaxWorkers)
	}
	if opts.Persister == nil {
		if opts.OutputPath == "" {
			return nil, ErrNoOutput
		}
		opts.Persister = tbl.Persist
	}
	return &Engine{tbl: tbl, adapter: adapter, opts: opts}, nil
}

func mapsTarget(fields []FieldMapping, target string) bool {
	for _, f := range fields {
		if f.Column == target {
			return true
		}
	}
	return false
}

// Plan returns the chunks a run would dispatch right now, without looking
// anything up.
func (e *Engine) Plan() []batch.Chunk[string] {
	keys, _ := e.pendingKeys()
	if len(keys) == 0 {
		return nil
	}
	return batch.Plan(keys, e.opts.ChunkSize)
}

// pendingKeys returns the distinct non-blank keys of the unprocessed rows in
// table order, and the number of unprocessed rows.
func (e *Engine) pendingKeys() ([]string, int) {
	rows := e.tbl.SelectUnprocessed(e.opts.TargetColumn)
	seen := make(map[string]struct{}, len(rows))
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys, len(rows)
}

// Run enriches every unprocessed row once. Lookup failures, unparseable
// responses and checkpoint failures are logged and counted in the Summary;
// they never abort the run. Cancelling ctx stops new lookups; completed
// chunks are still merged and persisted before Run returns.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	log := logging.ComponentLogger(logging.FromContext(ctx), "engine")
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		// A caller that set the run id has already put it on the logger.
		runID = logging.NewRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
		log = log.With().Str("run_id", runID).Logger()
	}
	ctx = log.WithContext(ctx)

	start := time.Now()
	keys, selected := e.pendingKeys()
	sum := &Summary{
		RunID:        runID,
		OutputPath:   e.opts.OutputPath,
		RowsSelected: selected,
		KeysSelected: len(keys),
	}

	if len(keys) == 0 {
		sum.RowsRemaining = selected
		sum.Elapsed = time.Since(start)
		log.Info().
			Str("operation", "run").
			Int("rows_remaining", selected).
			Msg("nothing to enrich")
		e.opts.Metrics.RunFinished(sum.RowsRemaining, time.Now())
		return sum, nil
	}

	chunks := batch.Plan(keys, e.opts.ChunkSize)
	sum.ChunksTotal = len(chunks)

	progress := batch.NewProgress(len(keys), len(chunks))
	pool, err := batch.NewPool[string, []lookup.Record](e.opts.MaxWorkers)
	if err != nil {
		return nil, err
	}
	pool.WithProgress(progress)

	log.Info().
		Str("operation", "run").
		Int("rows", selected).
		Int("keys", len(keys)).
		Int("chunks", len(chunks)).
		Int("chunk_size", e.opts.ChunkSize).
		Int("workers", e.opts.MaxWorkers).
		Str("output", e.opts.OutputPath).
		Msg("starting enrichment")

	dirty := false
	for c := range pool.Run(ctx, chunks, e.lookupChunk) {
		stats, outcome := e.apply(ctx, log, c, sum)
		progress.AddEnriched(stats.Enriched)
		e.opts.Metrics.ChunkCompleted(outcome, c.Duration)

		if stats.Enriched > 0 {
			dirty = !e.persist(log, sum)
		}
		if e.opts.Observer != nil {
			e.opts.Observer(progress.Snapshot())
		}
	}

	var runErr error
	if dirty {
		log.Warn().Str("operation", "flush").Msg("retrying final checkpoint")
		if !e.persist(log, sum) {
			runErr = fmt.Errorf("%w to %s", ErrUnsaved, e.opts.OutputPath)
		}
	}

	sum.RowsRemaining = e.tbl.Stats(e.opts.TargetColumn).Unprocessed
	sum.Interrupted = ctx.Err() != nil
	sum.Elapsed = time.Since(start)
	e.opts.Metrics.RunFinished(sum.RowsRemaining, time.Now())

	log.Info().
		Str("operation", "run").
		Int("chunks_succeeded", sum.ChunksSucceeded).
		Int("chunks_empty", sum.ChunksEmpty).
		Int("chunks_failed", sum.ChunksFailed).
		Int("chunks_cancelled", sum.ChunksCancelled).
		Int("rows_enriched", sum.RowsEnriched).
		Int("rows_remaining", sum.RowsRemaining).
		Int("persist_failures", sum.PersistFailures).
		Bool("interrupted", sum.Interrupted).
		Dur("elapsed", sum.Elapsed).
		Msg("enrichment finished")

	return sum, runErr
}

// lookupChunk is the pool task: one adapter call per chunk.
func (e *Engine) lookupChunk(ctx context.Context, c batch.Chunk[string]) ([]lookup.Record, error) {
	return e.adapter.Lookup(ctx, c.Items)
}

// apply merges one completion into the table and updates sum.
func (e *Engine) apply(
	ctx context.Context,
	log zerolog.Logger,
	c batch.Completion[string, []lookup.Record],
	sum *Summary,
) (MergeStats, string) {
	if c.Err != nil {
		if ctx.Err() != nil && errors.Is(c.Err, ctx.Err()) {
			sum.ChunksCancelled++
			log.Debug().
				Str("operation", "merge").
				Int("chunk", c.Chunk.Index).
				Msg("chunk cancelled")
			return MergeStats{}, metrics.OutcomeCancelled
		}
		sum.ChunksFailed++
		log.Warn().
			Str("operation", "lookup").
			Int("chunk", c.Chunk.Index).
			Int("keys", len(c.Chunk.Items)).
			Dur("duration", c.Duration).
			Err(c.Err).
			Msg("chunk lookup failed, rows stay unprocessed")
		return MergeStats{}, metrics.OutcomeFailed
	}

	result, dropped := BuildResult(c.Result, e.opts.ResponseKey, e.opts.Fields, e.opts.TargetColumn)
	stats := Merge(e.tbl, e.opts.TargetColumn, result)
	sum.RowsEnriched += stats.Enriched
	sum.StaleKeys += stats.Stale
	e.opts.Metrics.RowsEnriched(stats.Enriched)
	e.opts.Metrics.StaleKeys(stats.Stale)

	if stats.Stale > 0 {
		log.Debug().
			Str("operation", "merge").
			Int("chunk", c.Chunk.Index).
			Int("stale_keys", stats.Stale).
			Msg("ignored result keys with no unprocessed row")
	}

	outcome := metrics.OutcomeSucceeded
	if stats.Enriched == 0 {
		sum.ChunksEmpty++
		outcome = metrics.OutcomeEmpty
	} else {
		sum.ChunksSucceeded++
	}

	log.Info().
		Str("operation", "merge").
		Int("chunk", c.Chunk.Index).
		Int("keys", len(c.Chunk.Items)).
		Int("records", len(c.Result)).
		Int("dropped_records", dropped).
		Int("rows_enriched", stats.Enriched).
		Dur("duration", c.Duration).
		Msg("chunk merged")
	return stats, outcome
}

// persist writes a checkpoint and reports whether it succeeded.
func (e *Engine) persist(log zerolog.Logger, sum *Summary) bool {
	if err := e.opts.Persister(e.opts.OutputPath); err != nil {
		sum.PersistFailures++
		e.opts.Metrics.PersistFailed()
		log.Error().
			Str("operation", "persist").
			Str("path", e.opts.OutputPath).
			Err(err).
			Msg("checkpoint failed, continuing with in-memory state")
		return false
	}
	sum.Persists++
	return true
}
