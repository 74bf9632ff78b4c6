package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Response parsing errors.
var (
	// ErrNoJSONArray indicates the response text contains no bracketed JSON block.
	ErrNoJSONArray = errors.New("no JSON array found in response")

	// ErrMalformedJSON indicates bracketed blocks were found but none decoded
	// to an array of objects.
	ErrMalformedJSON = errors.New("response JSON array could not be decoded")

	// ErrEmptyResponse indicates the service returned no text at all.
	ErrEmptyResponse = errors.New("empty response from lookup service")
)

// Record is one object from the response array, with every value rendered
// as text.
type Record map[string]string

// Adapter looks up a batch of names. Implementations must be safe for
// concurrent use.
type Adapter interface {
	Lookup(ctx context.Context, names []string) ([]Record, error)
}

// Func adapts a plain function to Adapter.
type Func func(ctx context.Context, names []string) ([]Record, error)

// Lookup calls f.
func (f Func) Lookup(ctx context.Context, names []string) ([]Record, error) {
	return f(ctx, names)
}

// RateLimited wraps next so that at most perMinute lookups start per minute.
// perMinute <= 0 disables limiting.
func RateLimited(next Adapter, perMinute int) Adapter {
	if perMinute <= 0 {
		return next
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	return Func(func(ctx context.Context, names []string) ([]Record, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
		return next.Lookup(ctx, names)
	})
}

// WithTimeout bounds every lookup by d. d <= 0 disables the bound.
func WithTimeout(next Adapter, d time.Duration) Adapter {
	if d <= 0 {
		return next
	}
	return Func(func(ctx context.Context, names []string) ([]Record, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next.Lookup(ctx, names)
	})
}
