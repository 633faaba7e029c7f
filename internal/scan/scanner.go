package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/litescript/ls-oppositions/internal/ephem"
	"github.com/litescript/ls-oppositions/internal/logging"
	"github.com/litescript/ls-oppositions/internal/metrics"
	"github.com/litescript/ls-oppositions/internal/record"
)

const (
	// DefaultCoarseStep is the coarse pass step in days.
	DefaultCoarseStep = 4.0
	// DefaultFineStep is the fine pass step in days (30 seconds).
	DefaultFineStep = 30.0 / 86400.0

	progressInterval = 250 * time.Millisecond
)

// ErrInvalidPass is returned for a pass with an unusable time grid.
var ErrInvalidPass = errors.New("invalid scan pass")

// Sink receives detected events.
type Sink interface {
	Emit(ev record.Event, report bool) error
}

// Pass describes one sweep over the time grid.
type Pass struct {
	Name       string
	Start, End float64 // Julian dates, inclusive
	Step       float64 // days
	MagLimit   float64
	Candidates []int // nil scans every secure body
	Report     bool  // write events to the output
	Select     bool  // collect bright bodies into the returned selection
}

// Steps returns the number of grid points between Start and End inclusive.
func (p Pass) Steps() int {
	if p.Step <= 0 || p.End < p.Start {
		return 0
	}
	return int(math.Floor((p.End-p.Start)/p.Step+1e-9)) + 1
}

// JD returns the Julian date of grid point k.
func (p Pass) JD(k int) float64 {
	return p.Start + float64(k)*p.Step
}

// Progress is a point-in-time view of a running pass.
type Progress struct {
	Pass     string
	Step     int
	Steps    int
	JD       float64
	Bodies   int
	Selected int
	Events   int
	Done     bool
}

// Observer is notified of pass progress.
type Observer interface {
	OnProgress(Progress)
}

// Summary reports the outcome of a two-pass run.
type Summary struct {
	Secure       int
	Selected     int
	CoarseEvents int
	FineEvents   int
	Duration     time.Duration
}

// Scanner runs passes of the event search over a catalogue.
type Scanner struct {
	provider   ephem.Provider
	catalogue  *ephem.Catalogue
	sink       Sink
	logger     *logging.Logger
	metrics    *metrics.Metrics
	clock      clockwork.Clock
	observer   Observer
	workers    int
	coarseStep float64
	fineStep   float64
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the worker pool size. n <= 0 uses one worker per CPU.
func WithWorkers(n int) Option { return func(s *Scanner) { s.workers = n } }

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option { return func(s *Scanner) { s.logger = l } }

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Scanner) { s.metrics = m } }

// WithClock replaces the wall clock used for timing and progress throttling.
func WithClock(c clockwork.Clock) Option { return func(s *Scanner) { s.clock = c } }

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option { return func(s *Scanner) { s.observer = o } }

// WithSteps overrides the coarse and fine step sizes in days.
func WithSteps(coarse, fine float64) Option {
	return func(s *Scanner) {
		s.coarseStep = coarse
		s.fineStep = fine
	}
}

// New creates a scanner.
func New(p ephem.Provider, c *ephem.Catalogue, sink Sink, opts ...Option) *Scanner {
	s := &Scanner{
		provider:   p,
		catalogue:  c,
		sink:       sink,
		logger:     logging.Discard(),
		clock:      clockwork.NewRealClock(),
		coarseStep: DefaultCoarseStep,
		fineStep:   DefaultFineStep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs the coarse pass over every secure body, then the fine pass over the
// bodies it selected. Only fine pass events are reported.
func (s *Scanner) Run(ctx context.Context, start, end, magLimit float64) (Summary, error) {
	began := s.clock.Now()
	sum := Summary{Secure: len(s.catalogue.Secure())}

	coarse := Pass{
		Name:     "coarse",
		Start:    start,
		End:      end,
		Step:     s.coarseStep,
		MagLimit: magLimit,
		Select:   true,
	}
	sel, events, err := s.scan(ctx, coarse)
	sum.CoarseEvents = events
	if err != nil {
		return sum, err
	}

	candidates := sel.Items()
	slices.Sort(candidates)
	sum.Selected = len(candidates)
	if s.metrics != nil {
		s.metrics.SelectedBodies.Set(float64(len(candidates)))
	}
	s.logger.Info("coarse pass complete", "secure", sum.Secure, "selected", sum.Selected, "events", events)

	fine := Pass{
		Name:       "fine",
		Start:      start,
		End:        end,
		Step:       s.fineStep,
		MagLimit:   magLimit,
		Candidates: candidates,
		Report:     true,
	}
	_, events, err = s.scan(ctx, fine)
	sum.FineEvents = events
	sum.Duration = s.clock.Since(began)
	if err != nil {
		return sum, err
	}
	s.logger.Info("fine pass complete", "events", events, "duration", sum.Duration)
	return sum, nil
}

// Scan runs a single pass and returns the bodies it selected.
func (s *Scanner) Scan(ctx context.Context, p Pass) (*Selection, error) {
	sel, _, err := s.scan(ctx, p)
	return sel, err
}

func (s *Scanner) candidates(p Pass) []int {
	if p.Candidates == nil {
		return s.catalogue.Secure()
	}
	out := make([]int, 0, len(p.Candidates))
	for _, i := range p.Candidates {
		if b, ok := s.catalogue.Body(i); ok && b.SecureOrbit {
			out = append(out, i)
		}
	}
	return out
}

// scan is the pass loop. Steps run strictly in sequence; the bodies of one step are
// spread over the pool and the pool barrier orders each step's tracker updates before
// the next step reads them.
func (s *Scanner) scan(ctx context.Context, p Pass) (*Selection, int, error) {
	if p.Step <= 0 || math.IsNaN(p.Step) || math.IsNaN(p.Start) || math.IsNaN(p.End) {
		return nil, 0, fmt.Errorf("%w: %s step %v", ErrInvalidPass, p.Name, p.Step)
	}

	bodies := s.candidates(p)
	steps := p.Steps()
	sel := NewSelection()
	tracker := NewTracker(s.catalogue.Len())
	failed := make([]bool, s.catalogue.Len())

	var events atomic.Int64
	var sinkErr atomic.Pointer[error]

	pool := NewWorkerPool(s.workers)
	defer pool.Close()

	log := s.logger.With("pass", p.Name)
	log.Info("pass starting",
		"bodies", len(bodies),
		"steps", steps,
		"step_days", p.Step,
		"mag_limit", p.MagLimit,
		"workers", pool.Workers(),
	)

	var samples, providerErrors prometheus.Counter
	if s.metrics != nil {
		s.metrics.ScanRunning.Set(1)
		defer s.metrics.ScanRunning.Set(0)
		samples = s.metrics.SamplesEvaluated.WithLabelValues(p.Name)
		providerErrors = s.metrics.ProviderErrors
	}

	began := s.clock.Now()
	lastReport := began
	progress := Progress{Pass: p.Name, Steps: steps, Bodies: len(bodies)}

	for k := 0; k < steps; k++ {
		if err := ctx.Err(); err != nil {
			return sel, int(events.Load()), fmt.Errorf("%s pass interrupted at step %d: %w", p.Name, k, err)
		}

		jd := p.JD(k)
		stepBegan := s.clock.Now()

		pool.Run(len(bodies), func(n int) {
			i := bodies[n]
			if failed[i] {
				return
			}
			sample, err := s.provider.Evaluate(i, jd)
			if err != nil {
				failed[i] = true
				if providerErrors != nil {
					providerErrors.Inc()
				}
				log.Warn("ephemeris evaluation failed, dropping body", "body", i, "jd", jd, "error", err)
				return
			}
			if samples != nil {
				samples.Inc()
			}

			bright := sample.Mag < p.MagLimit
			if bright && k >= minDetectStep && p.Select {
				sel.Add(i)
			}

			fired := tracker.Observe(i, k, sample, bright)
			if fired == 0 {
				return
			}
			body, _ := s.catalogue.Body(i)
			for _, kind := range kindsOf(fired) {
				events.Add(1)
				ev := record.Event{Kind: kind, JD: jd - p.Step, BodyIndex: i, Body: body, Sample: sample}
				if err := s.sink.Emit(ev, p.Report); err != nil {
					sinkErr.CompareAndSwap(nil, &err)
				}
			}
		})

		if errp := sinkErr.Load(); errp != nil {
			return sel, int(events.Load()), fmt.Errorf("%s pass: %w", p.Name, *errp)
		}

		now := s.clock.Now()
		if s.metrics != nil {
			s.metrics.StepDuration.WithLabelValues(p.Name).Observe(now.Sub(stepBegan).Seconds())
		}
		if s.observer != nil && (k == 0 || now.Sub(lastReport) >= progressInterval) {
			lastReport = now
			progress.Step, progress.JD = k+1, jd
			progress.Selected, progress.Events = sel.Len(), int(events.Load())
			s.observer.OnProgress(progress)
		}
	}

	elapsed := s.clock.Since(began)
	if s.metrics != nil {
		s.metrics.PassDuration.WithLabelValues(p.Name).Set(elapsed.Seconds())
	}
	if s.observer != nil {
		progress.Step = steps
		if steps > 0 {
			progress.JD = p.JD(steps - 1)
		}
		progress.Selected, progress.Events, progress.Done = sel.Len(), int(events.Load()), true
		s.observer.OnProgress(progress)
	}
	log.Info("pass finished",
		"selected", sel.Len(),
		"events", events.Load(),
		"elapsed", elapsed,
		"reported", p.Report,
	)
	return sel, int(events.Load()), nil
}

func kindsOf(e Extremum) []record.Kind {
	kinds := make([]record.Kind, 0, 3)
	if e.Has(MaxSunAngle) {
		kinds = append(kinds, record.Opposition)
	}
	if e.Has(MinEarthDistance) {
		kinds = append(kinds, record.ClosestApproach)
	}
	if e.Has(MinMagnitude) {
		kinds = append(kinds, record.PeakBrightness)
	}
	return kinds
}
