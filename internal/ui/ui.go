// Package ui provides the terminal progress view using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-oppositions/internal/state"
	"github.com/litescript/ls-oppositions/internal/version"
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic snapshot refreshes.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time
)

// Model is the root Bubble Tea model.
type Model struct {
	state *state.Manager
	title string

	width    int
	height   int
	ready    bool
	animTick int

	dashboard DashboardModel
	snapshot  state.Snapshot
}

// New creates a root UI model. title describes the run, e.g. the date range and limit.
func New(stateMgr *state.Manager, title string) Model {
	return Model{
		state:     stateMgr,
		title:     title,
		dashboard: NewDashboardModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), animTickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.dashboard, cmd = m.dashboard.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// Header takes 4 lines, footer 2
		m.dashboard = m.dashboard.SetSize(msg.Width, msg.Height-6)

	case TickMsg:
		m.snapshot = m.state.Snapshot()
		m.dashboard = m.dashboard.UpdateData(m.snapshot)
		if m.snapshot.Done() {
			return m, tea.Quit
		}
		cmds = append(cmds, tickCmd())

	case AnimTickMsg:
		m.animTick++
		cmds = append(cmds, animTickCmd())
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderHeader() + "\n" + m.dashboard.View() + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString("\n  ")
	title := "✦ " + strings.ToUpper(version.Name)
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1)))
		b.WriteString(style.Render(string(r)))
	}
	b.WriteString(mutedStyle.Render("  v" + version.Version))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  " + m.title))
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color for a position in the title gradient.
// Blue -> purple -> magenta -> pink, darker toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	f := 1.0 - yRatio*0.5
	return fmt.Sprintf("#%02X%02X%02X", clamp8(r*f), clamp8(g*f), clamp8(b*f))
}

func clamp8(v float64) int {
	return max(0, min(255, int(v)))
}

func (m Model) renderFooter() string {
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	snap := m.snapshot
	var status string
	switch {
	case snap.Err != nil:
		status = errorStyle.Render("ERROR: " + snap.Err.Error())
	case snap.Done():
		status = accentStyle.Render("✓") + mutedStyle.Render(fmt.Sprintf(" done in %s", formatDuration(snap.Elapsed)))
	case snap.Progress.Steps > 0:
		status = accentStyle.Render(spinner) + mutedStyle.Render(fmt.Sprintf(" %s pass · elapsed %s · eta %s",
			strings.ToLower(string(snap.Phase)), formatDuration(snap.Elapsed), formatDuration(snap.ETA)))
	default:
		text := snap.Status
		if text == "" {
			text = "Loading..."
		}
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText(text)
	}

	help := mutedStyle.Render("↑↓: scroll events | q: quit")
	return "  " + status + "  " + mutedStyle.Render("|") + "  " + help
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	pos := m.animTick % (len(runes) + 8)

	var out strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}
		var hex string
		switch {
		case dist <= 1:
			hex = "#B4A0DC"
		case dist <= 3:
			hex = "#8C78B4"
		case dist <= 5:
			hex = "#6E5A96"
		default:
			hex = "#504678"
		}
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(r)))
	}
	return out.String()
}

// formatDuration renders a duration as h:mm:ss, or m:ss under an hour.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d.Round(time.Second).Seconds())
	h, s := s/3600, s%3600
	mi, s := s/60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mi, s)
	}
	return fmt.Sprintf("%d:%02d", mi, s)
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
