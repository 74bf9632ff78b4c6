package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/enrichr/internal/engine"
	"github.com/rshade/enrichr/internal/engine/batch"
)

func TestRunModel_Progress(t *testing.T) {
	m := NewRunModel("Enriching companies.csv", 100, 4, nil)
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "chunks  0/4")

	updated, cmd := m.Update(ProgressMsg{Snapshot: batch.ProgressSnapshot{
		TotalItems:      100,
		TotalChunks:     4,
		CompletedItems:  50,
		CompletedChunks: 2,
		FailedChunks:    1,
		EnrichedItems:   40,
		PercentComplete: 50,
		EstimatedLeft:   90 * time.Second,
	}})
	assert.Nil(t, cmd)

	view := updated.View()
	assert.Contains(t, view, "Enriching companies.csv")
	assert.Contains(t, view, "chunks  2/4")
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "keys    50/100")
	assert.Contains(t, view, "rows    40 enriched")
	assert.Contains(t, view, "eta     1m30s")
}

func TestRunModel_Cancel(t *testing.T) {
	calls := 0
	m := NewRunModel("run", 10, 1, func() { calls++ })

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	rm, ok := updated.(RunModel)
	require.True(t, ok)
	assert.True(t, rm.Stopping())
	assert.Equal(t, 1, calls, "cancel is called once")
	assert.Contains(t, rm.View(), "stopping")
}

func TestRunModel_Done(t *testing.T) {
	m := NewRunModel("run", 10, 1, nil)
	sum := &engine.Summary{RowsEnriched: 3}
	boom := errors.New("boom")

	updated, cmd := m.Update(DoneMsg{Summary: sum, Err: boom})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	rm := updated.(RunModel)
	got, err := rm.Result()
	assert.Same(t, sum, got)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rm.View())
}

func TestRunModel_WindowSize(t *testing.T) {
	m := NewRunModel("run", 10, 1, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	rm := updated.(RunModel)
	assert.Equal(t, 40, rm.width)
	assert.Equal(t, 20, rm.bar.Width)
}
