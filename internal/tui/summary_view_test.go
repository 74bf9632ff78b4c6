package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/enrichr/internal/engine"
	"github.com/rshade/enrichr/internal/engine/batch"
)

func TestRenderSummary(t *testing.T) {
	sum := &engine.Summary{
		RunID:           "01J9Z3ZK3YJ0V6Q9M3A5B7C8D9",
		OutputPath:      "out/companies.csv",
		ChunksTotal:     520,
		ChunksSucceeded: 500,
		ChunksEmpty:     12,
		ChunksFailed:    8,
		RowsSelected:    13000,
		RowsEnriched:    12345,
		RowsRemaining:   655,
		Persists:        500,
		PersistFailures: 1,
		Elapsed:         95*time.Second + 250*time.Millisecond,
	}

	tests := []struct {
		name   string
		styled bool
	}{
		{name: "plain", styled: false},
		{name: "styled", styled: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderSummary(sum, tt.styled)
			assert.Contains(t, out, "Enrichment finished with failures")
			assert.Contains(t, out, "12,345")
			assert.Contains(t, out, "13,000")
			assert.Contains(t, out, "520 total, 500 succeeded, 12 empty, 8 failed")
			assert.Contains(t, out, "500 written, 1 failed")
			assert.Contains(t, out, "out/companies.csv")
			assert.Contains(t, out, "1m35.25s")
		})
	}
}

func TestRenderSummary_Status(t *testing.T) {
	tests := []struct {
		name string
		sum  engine.Summary
		want string
	}{
		{name: "clean", sum: engine.Summary{ChunksTotal: 2, ChunksSucceeded: 2}, want: "Enrichment finished"},
		{name: "nothing", sum: engine.Summary{}, want: "Nothing to enrich"},
		{name: "interrupted", sum: engine.Summary{ChunksTotal: 2, ChunksCancelled: 1, Interrupted: true}, want: "Enrichment interrupted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderSummary(&tt.sum, false)
			assert.Contains(t, out, tt.want)
		})
	}

	assert.Contains(t, RenderSummary(&engine.Summary{ChunksTotal: 1, ChunksCancelled: 1, Interrupted: true}, false),
		"1 cancelled")
	assert.Empty(t, RenderSummary(nil, true))
}

func TestRenderPlan(t *testing.T) {
	chunks := batch.Plan([]string{"YouTube", "Microsoft", "Cargill"}, 2)

	out := RenderPlan(chunks, 4, 3, false)
	assert.Contains(t, out, "4 unprocessed rows, 3 distinct keys, 2 chunks")
	assert.Contains(t, out, `"YouTube" .. "Microsoft"`)
	assert.Contains(t, out, `"Cargill" .. "Cargill"`)
	assert.NotContains(t, out, "      YouTube")

	verbose := RenderPlan(chunks, 4, 3, true)
	assert.Contains(t, verbose, "      Microsoft\n")
}
