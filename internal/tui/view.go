package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderMeter(),
		m.renderAuto(),
		m.renderStatus(),
	}
	if m.last != nil {
		sections = append(sections, m.renderLast())
	}
	sections = append(sections, m.renderLog(), m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	camera := m.theme.StatusPending.Render("○ camera stopped")
	if m.running {
		camera = m.theme.StatusSuccess.Render("● camera live")
	}
	title := m.theme.Title.Render("🥚 Live Scan")
	batch := m.theme.Subtitle.Render("batch " + m.session.BatchNumber())
	return fmt.Sprintf("%s  %s  %s\n", title, batch, camera)
}

func (m Model) renderMeter() string {
	band := m.alignment.Band()
	color := m.theme.BandColor(band)
	m.meter.FullColor = string(color)

	pct := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(fmt.Sprintf("%3.0f%% %s", m.alignment.Confidence*100, band))

	ready := m.theme.StatusPending.Render("improve alignment to analyze")
	switch {
	case m.analyzing:
		ready = m.theme.StatusInfo.Render("analyzing...")
	case m.running && m.alignment.Confidence >= m.session.Gate():
		ready = m.theme.StatusSuccess.Render("ready to analyze")
	}

	return fmt.Sprintf("Alignment %s %s  %s", m.meter.ViewAs(m.alignment.Confidence), pct, ready)
}

func (m Model) renderAuto() string {
	enabled, threshold := m.session.AutoCapture()
	if !enabled {
		return m.theme.Subtitle.Render("Auto-capture off")
	}
	return m.theme.Normal.Render(fmt.Sprintf("Auto-capture on at %.0f%%", threshold*100))
}

func (m Model) renderStatus() string {
	style := m.theme.StatusInfo
	switch m.statusKind {
	case statusOK:
		style = m.theme.StatusSuccess
	case statusWarn:
		style = m.theme.StatusWarning
	case statusError:
		style = m.theme.StatusError
	}
	return "\n" + style.Render(m.status) + "\n"
}

func (m Model) renderLast() string {
	a := m.last.Analysis
	var b strings.Builder
	b.WriteString(m.theme.Bold.Render("Prediction: "))
	b.WriteString(m.theme.LabelStyle(a.Prediction).Render(a.Prediction.Title()))
	if text := strings.TrimSpace(a.AnalysisText); text != "" {
		width := m.width - 6
		if width < 20 {
			width = 20
		}
		b.WriteString("\n")
		b.WriteString(m.theme.Normal.Width(width).Render(text))
	}
	return m.theme.RoundedBox.Render(b.String())
}

func (m Model) renderLog() string {
	entries := m.log.Entries()
	if len(entries) == 0 {
		return m.theme.Subtitle.Render("\nNo predictions logged yet.\n")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.theme.Bold.Render(fmt.Sprintf("Recent predictions (%d total)", len(entries))))
	b.WriteString("\n")
	for i, e := range entries {
		if i == recentEntries {
			break
		}
		b.WriteString(m.renderEntry(e))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderEntry(e model.LogEntry) string {
	ts := m.theme.Subtitle.Render(e.Timestamp.Format("15:04:05"))
	label := m.theme.LabelStyle(e.Prediction).Render(e.Prediction.Title())
	return fmt.Sprintf("  %s  %-12s %s  %s", ts, e.BatchNumber, label, m.theme.Subtitle.Render(string(e.Source)))
}
