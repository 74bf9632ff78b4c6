package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/enrichr/internal/engine"
	"github.com/rshade/enrichr/internal/engine/batch"
)

// ProgressMsg carries a progress snapshot taken after a chunk was merged.
type ProgressMsg struct {
	Snapshot batch.ProgressSnapshot
}

// DoneMsg is sent once the run has returned.
type DoneMsg struct {
	Summary *engine.Summary
	Err     error
}

// RunModel is the Bubble Tea model for the live run view.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type RunModel struct {
	title    string
	cancel   context.CancelFunc
	bar      progress.Model
	snap     batch.ProgressSnapshot
	width    int
	stopping bool
	done     bool
	summary  *engine.Summary
	err      error
}

// NewRunModel creates the live view. cancel is called when the operator
// presses ctrl+c or q.
func NewRunModel(title string, totalRows, totalChunks int, cancel context.CancelFunc) RunModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth))
	return RunModel{
		title:  title,
		cancel: cancel,
		bar:    bar,
		width:  defaultWidth,
		snap: batch.ProgressSnapshot{
			TotalItems:  totalRows,
			TotalChunks: totalChunks,
		},
	}
}

// Init initializes the model (Bubble Tea interface).
func (m RunModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(progressBarWidth, max(10, msg.Width-20)) //nolint:mnd // Leave room for the percentage.
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		}
		return m, nil

	case ProgressMsg:
		m.snap = msg.Snapshot
		return m, nil

	case DoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// View renders the model (Bubble Tea interface).
func (m RunModel) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	label := lipgloss.NewStyle().Foreground(ColorLabel)
	muted := lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)

	sb.WriteString(title.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(m.bar.ViewAs(m.snap.PercentComplete / 100)) //nolint:mnd // Percent to ratio.
	sb.WriteString("\n\n")

	sb.WriteString(label.Render(fmt.Sprintf("chunks  %d/%d", m.snap.CompletedChunks, m.snap.TotalChunks)))
	if m.snap.FailedChunks > 0 {
		sb.WriteString("  ")
		sb.WriteString(lipgloss.NewStyle().Foreground(ColorWarning).
			Render(fmt.Sprintf("%d failed", m.snap.FailedChunks)))
	}
	sb.WriteString("\n")
	sb.WriteString(label.Render(fmt.Sprintf("keys    %d/%d", m.snap.CompletedItems, m.snap.TotalItems)))
	sb.WriteString("\n")
	sb.WriteString(label.Render(fmt.Sprintf("rows    %d enriched", m.snap.EnrichedItems)))
	sb.WriteString("\n")
	if m.snap.EstimatedLeft > 0 {
		sb.WriteString(label.Render("eta     " + m.snap.EstimatedLeft.Round(time.Second).String()))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if m.stopping {
		sb.WriteString(muted.Render("stopping: waiting for running lookups to finish..."))
	} else {
		sb.WriteString(muted.Render("press q or ctrl+c to stop after the running chunks"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Result returns the summary and error delivered by DoneMsg.
func (m RunModel) Result() (*engine.Summary, error) {
	return m.summary, m.err
}

// Stopping reports whether the operator asked to stop.
func (m RunModel) Stopping() bool {
	return m.stopping
}
