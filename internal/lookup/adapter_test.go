package lookup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo() Func {
	return func(_ context.Context, names []string) ([]Record, error) {
		out := make([]Record, len(names))
		for i, n := range names {
			out[i] = Record{"name": n}
		}
		return out, nil
	}
}

func TestFunc(t *testing.T) {
	recs, err := echo().Lookup(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []Record{{"name": "a"}, {"name": "b"}}, recs)
}

func TestRateLimited_Disabled(t *testing.T) {
	next := echo()
	a := RateLimited(next, 0)
	_, err := a.Lookup(context.Background(), []string{"a"})
	require.NoError(t, err)
}

func TestRateLimited_WaitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	next := Func(func(_ context.Context, _ []string) ([]Record, error) {
		calls.Add(1)
		return nil, nil
	})
	// One token per minute: the first call passes, the second must wait.
	a := RateLimited(next, 1)

	_, err := a.Lookup(context.Background(), []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = a.Lookup(ctx, []string{"b"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWithTimeout(t *testing.T) {
	slow := Func(func(ctx context.Context, _ []string) ([]Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).Lookup(context.Background(), nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	recs, err := WithTimeout(echo(), 0).Lookup(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
