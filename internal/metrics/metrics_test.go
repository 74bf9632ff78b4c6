package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder("cik")

	r.ChunkCompleted(OutcomeSucceeded, 2*time.Second)
	r.ChunkCompleted(OutcomeSucceeded, time.Second)
	r.ChunkCompleted(OutcomeFailed, time.Second)
	r.ChunkCompleted(OutcomeCancelled, 0)
	r.RowsEnriched(7)
	r.RowsEnriched(0)
	r.StaleKeys(2)
	r.PersistFailed()
	r.RunFinished(3, time.Unix(1700000000, 0))

	assert.InDelta(t, 2, testutil.ToFloat64(r.chunks.WithLabelValues(OutcomeSucceeded)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.chunks.WithLabelValues(OutcomeFailed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.chunks.WithLabelValues(OutcomeCancelled)), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(r.rowsEnriched), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.staleKeys), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.persistFailures), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(r.rowsRemaining), 0)
	assert.InDelta(t, 1700000000, testutil.ToFloat64(r.lastSuccess), 0)

	// Cancelled chunks never ran a lookup.
	assert.Equal(t, 2, testutil.CollectAndCount(r.lookupDuration))
}

func TestRecorder_ProfileLabel(t *testing.T) {
	r := NewRecorder("parent")
	r.RowsEnriched(1)

	expected := `
# HELP enrichr_rows_enriched_total Rows that received a lookup result.
# TYPE enrichr_rows_enriched_total counter
enrichr_rows_enriched_total{profile="parent"} 1
`
	require.NoError(t, testutil.CollectAndCompare(r.rowsEnriched, strings.NewReader(expected)))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ChunkCompleted(OutcomeSucceeded, time.Second)
		r.RowsEnriched(1)
		r.StaleKeys(1)
		r.PersistFailed()
		r.RunFinished(0, time.Now())
	})
	assert.Nil(t, r.Registry())
	require.NoError(t, r.Push(context.Background(), "http://unused", ""))
}

func TestPush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		mu.Lock()
		method, path, body = req.Method, req.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder("cik")
	r.RowsEnriched(4)
	require.NoError(t, r.Push(context.Background(), srv.URL, ""))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/"+DefaultJob, path)
	assert.NotEmpty(t, body)
}

func TestPush_Errors(t *testing.T) {
	r := NewRecorder("cik")
	require.ErrorIs(t, r.Push(context.Background(), "", "job"), ErrNoPushURL)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	require.Error(t, r.Push(context.Background(), srv.URL, "job"))
}
