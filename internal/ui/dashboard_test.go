package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-oppositions/internal/record"
	"github.com/litescript/ls-oppositions/internal/scan"
	"github.com/litescript/ls-oppositions/internal/state"
)

func TestRenderBar(t *testing.T) {
	tests := []struct {
		name       string
		frac       float64
		width      int
		wantFilled int
	}{
		{"empty", 0.0, 10, 0},
		{"full", 1.0, 10, 10},
		{"half", 0.5, 10, 5},
		{"quarter", 0.25, 8, 2},
		{"over 100%", 1.5, 10, 10},
		{"negative", -0.5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderBar(tt.frac, tt.width)
			if !strings.HasPrefix(bar, "[") || !strings.HasSuffix(bar, "]") {
				t.Errorf("bar should have brackets, got %q", bar)
			}
			if got := strings.Count(bar, "█"); got != tt.wantFilled {
				t.Errorf("filled count = %d, want %d", got, tt.wantFilled)
			}
			if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
				t.Errorf("bar width = %d, want %d", got, tt.width)
			}
		})
	}
}

func eventSnapshot(n int) state.Snapshot {
	events := make([]record.Record, n)
	for i := range events {
		events[i] = record.Record{
			UTC:           "2025-01-25 00:00:00",
			Kind:          record.Kind(i % 3),
			BodyNumber:    i + 1,
			BodyName:      "Body" + string(rune('A'+i%26)),
			Mag:           6.5,
			EarthDist:     1.25,
			Constellation: "Leo",
		}
	}
	return state.Snapshot{
		Events: events,
		Counts: map[record.Kind]int{record.Opposition: 2, record.ClosestApproach: 1},
		Coarse: scan.Progress{Pass: "coarse", Step: 10, Steps: 10, Selected: 4, Done: true},
		Fine:   scan.Progress{Pass: "fine", Step: 50, Steps: 200, Bodies: 4},
	}
}

func TestDashboard_View(t *testing.T) {
	m := NewDashboardModel().SetSize(120, 30).UpdateData(eventSnapshot(3))
	view := m.View()

	for _, want := range []string{"coarse", "100%", "selected 4", "fine", " 25%", "step 50/200", "Opposition 2", "Apogee 1", "PeakMag 0", "(1) BodyA", "Leo"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestDashboard_EmptyEvents(t *testing.T) {
	view := NewDashboardModel().SetSize(80, 20).View()
	if !strings.Contains(view, "none yet") {
		t.Errorf("expected empty placeholder, got:\n%s", view)
	}
	if !strings.Contains(view, "waiting") {
		t.Errorf("expected waiting passes, got:\n%s", view)
	}
}

func TestDashboard_Scroll(t *testing.T) {
	// Height 13 leaves 3 visible rows for 10 events.
	m := NewDashboardModel().SetSize(120, 13).UpdateData(eventSnapshot(10))
	if !strings.Contains(m.View(), "(10) BodyJ") {
		t.Fatal("newest event should be visible before scrolling")
	}

	up := tea.KeyMsg{Type: tea.KeyUp}
	for i := 0; i < 20; i++ {
		m, _ = m.Update(up)
	}
	if m.offset != 7 {
		t.Errorf("offset = %d, want clamped to 7", m.offset)
	}
	view := m.View()
	if !strings.Contains(view, "(1) BodyA") || strings.Contains(view, "(10) BodyJ") {
		t.Errorf("scrolled view should show the oldest events:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	if m.offset != 0 {
		t.Errorf("offset after end = %d, want 0", m.offset)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Vesta", 24); got != "Vesta" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("Ünïcödé-long-name", 6); got != "Ünïcö…" {
		t.Errorf("truncate = %q, want rune-safe cut", got)
	}
}
