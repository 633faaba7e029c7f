// Package state provides thread-safe state management for a running scan.
package state

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/litescript/ls-oppositions/internal/record"
	"github.com/litescript/ls-oppositions/internal/scan"
)

// Phase is the coarse lifecycle of a scan.
type Phase string

const (
	PhaseLoading Phase = "LOADING"
	PhaseCoarse  Phase = "COARSE"
	PhaseFine    Phase = "FINE"
	PhaseDone    Phase = "DONE"
	PhaseFailed  Phase = "FAILED"
)

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// Manager handles all shared scan state with thread-safe access.
type Manager struct {
	mu    sync.RWMutex
	clock clockwork.Clock

	phase    Phase
	started  time.Time
	finished time.Time
	summary  scan.Summary
	lastErr  error
	status   string

	// Latest progress per pass name
	progress map[string]scan.Progress
	current  string

	// Step history of the current pass, for rate estimation
	stepHistory []TimeSeries
	maxHistory  int

	// Reported events (ring buffer)
	events       []record.Record
	maxEvents    int
	eventWriteAt int

	counts map[record.Kind]int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents  int
	MaxHistory int
	Clock      clockwork.Clock
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:  50,
		MaxHistory: 120,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHistory := cfg.MaxHistory
	if maxHistory < 2 {
		maxHistory = 2
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		clock:      clock,
		phase:      PhaseLoading,
		started:    clock.Now(),
		progress:   make(map[string]scan.Progress),
		maxHistory: maxHistory,
		maxEvents:  maxEvents,
		events:     make([]record.Record, 0, maxEvents),
		counts:     make(map[record.Kind]int),
	}
}

// SetStatus records a free-form status line, e.g. the current loading step.
func (m *Manager) SetStatus(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
}

// OnProgress records pass progress. It satisfies scan.Observer.
func (m *Manager) OnProgress(p scan.Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Pass != m.current {
		m.current = p.Pass
		m.stepHistory = m.stepHistory[:0]
	}
	m.progress[p.Pass] = p

	switch p.Pass {
	case "coarse":
		m.phase = PhaseCoarse
	case "fine":
		m.phase = PhaseFine
	}

	m.stepHistory = append(m.stepHistory, TimeSeries{Timestamp: m.clock.Now(), Value: float64(p.Step)})
	if len(m.stepHistory) > m.maxHistory {
		m.stepHistory = m.stepHistory[1:]
	}
}

// OnRecord tallies an event. Only reported events enter the recent-event buffer.
// It is intended as a record.Listener.
func (m *Manager) OnRecord(r record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !r.Reported {
		return
	}
	m.counts[r.Kind]++
	m.addEvent(r)
}

// Finish marks the scan as complete or failed.
func (m *Manager) Finish(sum scan.Summary, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary = sum
	m.lastErr = err
	m.finished = m.clock.Now()
	if err != nil {
		m.phase = PhaseFailed
	} else {
		m.phase = PhaseDone
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(r record.Record) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, r)
	} else {
		m.events[m.eventWriteAt] = r
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Phase    Phase
	Status   string
	Started  time.Time
	Elapsed  time.Duration
	Progress scan.Progress // current pass
	Coarse   scan.Progress
	Fine     scan.Progress
	Rate     float64 // steps per second over the recent history
	ETA      time.Duration
	Events   []record.Record
	Counts   map[record.Kind]int
	Summary  scan.Summary
	Err      error
}

// Done reports whether the scan has ended, successfully or not.
func (s Snapshot) Done() bool {
	return s.Phase == PhaseDone || s.Phase == PhaseFailed
}

// Fraction returns the completed share of the current pass in [0, 1].
func (s Snapshot) Fraction() float64 {
	if s.Progress.Steps == 0 {
		return 0
	}
	return float64(s.Progress.Step) / float64(s.Progress.Steps)
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[record.Kind]int, len(m.counts))
	for k, v := range m.counts {
		counts[k] = v
	}

	end := m.clock.Now()
	if !m.finished.IsZero() {
		end = m.finished
	}

	snap := Snapshot{
		Phase:    m.phase,
		Status:   m.status,
		Started:  m.started,
		Elapsed:  end.Sub(m.started),
		Progress: m.progress[m.current],
		Coarse:   m.progress["coarse"],
		Fine:     m.progress["fine"],
		Events:   m.getEventsOrdered(),
		Counts:   counts,
		Summary:  m.summary,
		Err:      m.lastErr,
	}
	snap.Rate = m.rate()
	if snap.Rate > 0 && !snap.Progress.Done {
		remaining := float64(snap.Progress.Steps - snap.Progress.Step)
		snap.ETA = time.Duration(remaining / snap.Rate * float64(time.Second))
	}
	return snap
}

// rate estimates steps per second from the first and last history points.
func (m *Manager) rate() float64 {
	n := len(m.stepHistory)
	if n < 2 {
		return 0
	}
	p1, p2 := m.stepHistory[0], m.stepHistory[n-1]
	dt := p2.Timestamp.Sub(p1.Timestamp).Seconds()
	if dt <= 0 {
		return 0
	}
	return (p2.Value - p1.Value) / dt
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []record.Record {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]record.Record, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]record.Record, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}
