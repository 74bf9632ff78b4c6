package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/enrichr/internal/engine"
	"github.com/rshade/enrichr/internal/engine/batch"
)

// RenderSummary renders the end-of-run report. styled selects a bordered
// lipgloss box for terminals; otherwise plain aligned lines are returned.
func RenderSummary(sum *engine.Summary, styled bool) string {
	if sum == nil {
		return ""
	}
	p := message.NewPrinter(language.English)

	lines := [][2]string{
		{"Run", sum.RunID},
		{"Output", sum.OutputPath},
		{"Rows selected", p.Sprintf("%d", sum.RowsSelected)},
		{"Rows enriched", p.Sprintf("%d", sum.RowsEnriched)},
		{"Rows remaining", p.Sprintf("%d", sum.RowsRemaining)},
		{"Chunks", chunkLine(p, sum)},
		{"Checkpoints", checkpointLine(p, sum)},
		{"Elapsed", sum.Elapsed.Round(time.Millisecond).String()},
	}

	status, color := summaryStatus(sum)
	if !styled {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s\n", status)
		for _, l := range lines {
			fmt.Fprintf(&sb, "  %-*s %s\n", labelWidth, l[0]+":", l[1])
		}
		return sb.String()
	}

	label := lipgloss.NewStyle().Foreground(ColorLabel).Width(labelWidth)
	value := lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	head := lipgloss.NewStyle().Foreground(color).Bold(true)

	var sb strings.Builder
	sb.WriteString(head.Render(status))
	for _, l := range lines {
		sb.WriteString("\n")
		sb.WriteString(label.Render(l[0]))
		sb.WriteString(value.Render(l[1]))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	return box.Render(sb.String()) + "\n"
}

// RenderPlan renders the chunk layout of a dry run.
func RenderPlan(chunks []batch.Chunk[string], rows, keys int, verbose bool) string {
	p := message.NewPrinter(language.English)
	var sb strings.Builder
	sb.WriteString(p.Sprintf("%d unprocessed rows, %d distinct keys, %d chunks\n", rows, keys, len(chunks)))
	for _, c := range chunks {
		first, last := c.Items[0], c.Items[len(c.Items)-1]
		p.Fprintf(&sb, "  chunk %4d  %3d keys  %q .. %q\n", c.Index, len(c.Items), first, last)
		if verbose {
			for _, k := range c.Items {
				fmt.Fprintf(&sb, "      %s\n", k)
			}
		}
	}
	return sb.String()
}

func chunkLine(p *message.Printer, sum *engine.Summary) string {
	s := p.Sprintf("%d total, %d succeeded, %d empty, %d failed",
		sum.ChunksTotal, sum.ChunksSucceeded, sum.ChunksEmpty, sum.ChunksFailed)
	if sum.ChunksCancelled > 0 {
		s += p.Sprintf(", %d cancelled", sum.ChunksCancelled)
	}
	return s
}

func checkpointLine(p *message.Printer, sum *engine.Summary) string {
	if sum.PersistFailures == 0 {
		return p.Sprintf("%d written", sum.Persists)
	}
	return p.Sprintf("%d written, %d failed", sum.Persists, sum.PersistFailures)
}

func summaryStatus(sum *engine.Summary) (string, lipgloss.Color) {
	switch {
	case sum.Interrupted:
		return "Enrichment interrupted", ColorWarning
	case sum.ChunksTotal == 0:
		return "Nothing to enrich", ColorMuted
	case sum.ChunksFailed > 0 || sum.PersistFailures > 0:
		return "Enrichment finished with failures", ColorWarning
	default:
		return "Enrichment finished", ColorSuccess
	}
}
