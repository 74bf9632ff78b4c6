package logging

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type runIDKey struct{}

// runIDGenerator hands out monotonic ULIDs; ulid.MonotonicEntropy is not safe
// for concurrent use on its own.
//
//nolint:gochecknoglobals // Process-wide id source.
var runIDGenerator = struct {
	sync.Mutex
	entropy *ulid.MonotonicEntropy
}{
	entropy: ulid.Monotonic(rand.Reader, 0),
}

// NewRunID returns a new, lexically sortable run identifier.
func NewRunID() string {
	runIDGenerator.Lock()
	defer runIDGenerator.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), runIDGenerator.entropy).String()
}

// ContextWithRunID stores id on ctx.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run id stored on ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// GetOrGenerateRunID returns the run id on ctx, creating one if absent.
func GetOrGenerateRunID(ctx context.Context) string {
	if id := RunIDFromContext(ctx); id != "" {
		return id
	}
	return NewRunID()
}
