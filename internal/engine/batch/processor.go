package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Chunk and worker bounds.
const (
	// DefaultChunkSize favours resumability over throughput.
	DefaultChunkSize = 25

	// MinChunkSize is the smallest allowed chunk.
	MinChunkSize = 1

	// MaxChunkSize bounds a single lookup request.
	MaxChunkSize = 500

	// DefaultWorkers is the default number of concurrent tasks.
	DefaultWorkers = 4

	// MaxWorkers bounds the pool.
	MaxWorkers = 256
)

// Pool errors.
var (
	ErrInvalidWorkers = errors.New("worker count must be between 1 and 256")
	ErrNilTask        = errors.New("task cannot be nil")
	ErrTaskPanic      = errors.New("task panicked")
)

// Task processes one chunk. It must be safe to call concurrently and must
// not touch state shared with other tasks.
type Task[T, R any] func(ctx context.Context, chunk Chunk[T]) (R, error)

// Completion is the outcome of one chunk's task.
type Completion[T, R any] struct {
	Chunk    Chunk[T]
	Result   R
	Err      error
	Duration time.Duration
}

// Pool runs tasks over chunks with bounded concurrency.
type Pool[T, R any] struct {
	workers  int
	progress *Progress
}

// NewPool creates a pool running at most workers tasks at once.
func NewPool[T, R any](workers int) (*Pool[T, R], error) {
	if workers < 1 || workers > MaxWorkers {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	return &Pool[T, R]{workers: workers}, nil
}

// WithProgress makes the pool record every completion on progress.
func (p *Pool[T, R]) WithProgress(progress *Progress) *Pool[T, R] {
	p.progress = progress
	return p
}

// Workers returns the concurrency limit.
func (p *Pool[T, R]) Workers() int {
	return p.workers
}

// Run dispatches one task per chunk and returns a channel that yields each
// Completion as its task finishes. The channel is closed once every chunk has
// produced a Completion. Once ctx is done no further chunks are started; they
// complete immediately with ctx.Err(). Tasks already running are expected to
// observe ctx themselves.
func (p *Pool[T, R]) Run(ctx context.Context, chunks []Chunk[T], task Task[T, R]) <-chan Completion[T, R] {
	// Buffered to len(chunks) so a slow consumer never stalls a worker.
	out := make(chan Completion[T, R], len(chunks))

	if task == nil {
		for _, c := range chunks {
			out <- Completion[T, R]{Chunk: c, Err: ErrNilTask}
		}
		close(out)
		return out
	}

	go func() {
		defer close(out)

		// Plain Group, not WithContext: one failed chunk must not cancel the rest.
		var g errgroup.Group
		g.SetLimit(p.workers)

		for _, c := range chunks {
			if err := ctx.Err(); err != nil {
				out <- p.record(Completion[T, R]{Chunk: c, Err: err})
				continue
			}
			g.Go(func() error {
				// Waiting for a free slot can outlast the context.
				if err := ctx.Err(); err != nil {
					out <- p.record(Completion[T, R]{Chunk: c, Err: err})
					return nil
				}
				out <- p.record(p.execute(ctx, c, task))
				return nil
			})
		}

		_ = g.Wait()
	}()

	return out
}

func (p *Pool[T, R]) execute(ctx context.Context, c Chunk[T], task Task[T, R]) (res Completion[T, R]) {
	res.Chunk = c
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			var zero R
			res.Result = zero
			res.Err = fmt.Errorf("%w: chunk %d: %v", ErrTaskPanic, c.Index, r)
		}
		res.Duration = time.Since(start)
	}()

	res.Result, res.Err = task(ctx, c)
	return res
}

func (p *Pool[T, R]) record(c Completion[T, R]) Completion[T, R] {
	if p.progress != nil {
		p.progress.AddCompleted(len(c.Chunk.Items), c.Err == nil)
	}
	return c
}
