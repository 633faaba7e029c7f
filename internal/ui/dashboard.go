package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-oppositions/internal/record"
	"github.com/litescript/ls-oppositions/internal/scan"
	"github.com/litescript/ls-oppositions/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	kindStyles = map[record.Kind]lipgloss.Style{
		record.Opposition:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		record.ClosestApproach: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		record.PeakBrightness:  lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
	}
)

const barWidth = 30

// DashboardModel shows pass progress and the most recent reported events.
type DashboardModel struct {
	width    int
	height   int
	offset   int // events scrolled back from the newest
	snapshot state.Snapshot
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{}
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m DashboardModel) UpdateData(snapshot state.Snapshot) DashboardModel {
	m.snapshot = snapshot
	m.offset = min(m.offset, m.maxOffset())
	return m
}

// Update handles scrolling keys.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			m.offset = min(m.offset+1, m.maxOffset())
		case "down", "j":
			m.offset = max(m.offset-1, 0)
		case "end":
			m.offset = 0
		case "home":
			m.offset = m.maxOffset()
		}
	}
	return m, nil
}

func (m DashboardModel) visibleRows() int {
	// Progress block and table chrome take 10 lines
	return max(m.height-10, 3)
}

func (m DashboardModel) maxOffset() int {
	return max(len(m.snapshot.Events)-m.visibleRows(), 0)
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Scan"))
	b.WriteString("\n")
	b.WriteString(renderPass("coarse", m.snapshot.Coarse))
	b.WriteString(renderPass("fine", m.snapshot.Fine))
	b.WriteString("\n")
	b.WriteString(m.renderCounts())
	b.WriteString("\n\n")
	b.WriteString(m.renderEvents())
	return b.String()
}

func renderPass(name string, p scan.Progress) string {
	frac := 0.0
	if p.Steps > 0 {
		frac = float64(p.Step) / float64(p.Steps)
	}
	line := fmt.Sprintf("  %-6s %s %3.0f%%", name, renderBar(frac, barWidth), frac*100)
	if p.Steps == 0 {
		return line + mutedStyle.Render("  waiting") + "\n"
	}
	detail := fmt.Sprintf("  step %d/%d  JD %.5f  bodies %d", p.Step, p.Steps, p.JD, p.Bodies)
	if name == "coarse" {
		detail += fmt.Sprintf("  selected %d", p.Selected)
	}
	return line + mutedStyle.Render(detail) + "\n"
}

// renderBar draws a fixed-width progress bar for a fraction in [0, 1].
func renderBar(frac float64, width int) string {
	filled := max(0, min(width, int(frac*float64(width))))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + accentStyle.Render(bar) + "]"
}

func (m DashboardModel) renderCounts() string {
	parts := make([]string, 0, len(record.Kinds))
	for _, k := range record.Kinds {
		parts = append(parts, kindStyles[k].Render(fmt.Sprintf("%s %d", k, m.snapshot.Counts[k])))
	}
	return "  " + strings.Join(parts, mutedStyle.Render("  ·  "))
}

func (m DashboardModel) renderEvents() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent events"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-19s %-10s %-24s %6s %9s  %s",
		"UTC", "Event", "Body", "Mag", "Dist/AU", "Constellation")))
	b.WriteString("\n")

	events := m.snapshot.Events
	if len(events) == 0 {
		b.WriteString(mutedStyle.Render("  none yet"))
		return b.String()
	}

	end := len(events) - m.offset
	start := max(end-m.visibleRows(), 0)
	for _, r := range events[start:end] {
		name := r.BodyName
		if r.BodyNumber > 0 {
			name = fmt.Sprintf("(%d) %s", r.BodyNumber, r.BodyName)
		}
		name = truncate(name, 24)
		kind := kindStyles[r.Kind].Render(fmt.Sprintf("%-10s", r.Kind))
		row := fmt.Sprintf("%-19s ", r.UTC) + kind + rowStyle.Render(fmt.Sprintf(" %-24s %6.1f %9.4f  %s",
			name, r.Mag, r.EarthDist, r.Constellation))
		b.WriteString("  " + row + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
