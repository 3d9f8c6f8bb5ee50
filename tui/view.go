package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/robmorgan/pulse/indicator"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tempoStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	dimStyle     = helpStyle.Copy().UnsetMargins()
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	beatStyle    = lipgloss.NewStyle().Padding(0, 1).Margin(0, 1, 0, 0)
	appStyle     = lipgloss.NewStyle().Margin(1, 2, 0, 2)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pulse"))
	b.WriteString("  ")
	b.WriteString(m.stateView())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s  %d/4  %s\n\n",
		tempoStyle.Render(fmt.Sprintf("%d BPM", m.settings.Tempo)),
		m.settings.BeatsPerMeasure,
		m.settings.Mode,
	)

	b.WriteString(m.beatsView())
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.measureProgress()))
	b.WriteString("\n\n")

	if m.taps > 0 {
		if m.tapBPM > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("tapped %d BPM", m.tapBPM)))
		} else {
			b.WriteString(dimStyle.Render("keep tapping..."))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("scheduled %d  dropped %d  queued %d",
		m.status.Scheduled, m.status.Dropped, m.status.Queued)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	if m.quitting {
		b.WriteString("\n")
	}
	return appStyle.Render(b.String())
}

func (m Model) stateView() string {
	switch {
	case m.status.Pending:
		return m.spinner.View() + " loading sounds"
	case m.running:
		return "playing"
	default:
		return dimStyle.Render("stopped")
	}
}

// beatsView draws one cell per beat of the measure, lighting the current one.
func (m Model) beatsView() string {
	n := m.settings.BeatsPerMeasure
	cells := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		label := fmt.Sprintf("%d", i)
		style := beatStyle.Copy().Foreground(lipgloss.Color("241"))
		if m.running && i == m.beat {
			c := indicator.ColorForBeat(i, n)
			style = beatStyle.Copy().Bold(true).
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color(c.Hex()))
		}
		cells = append(cells, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) measureProgress() float64 {
	if !m.running || m.beat < 1 || m.settings.BeatsPerMeasure < 1 {
		return 0
	}
	return float64(m.beat) / float64(m.settings.BeatsPerMeasure)
}
