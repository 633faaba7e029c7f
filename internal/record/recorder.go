package record

import (
	"fmt"
	"io"
	"sync"

	"github.com/litescript/ls-oppositions/internal/astro"
	"github.com/litescript/ls-oppositions/internal/constellation"
	"github.com/litescript/ls-oppositions/internal/logging"
)

// Locator tags a sky position (radians) with a region name.
type Locator interface {
	Locate(ra, dec float64) string
}

// Listener receives every record after it has been written.
type Listener func(Record)

// Recorder turns scanner events into records and writes them.
// Output and diagnostic logging for one record happen under a single lock, so lines
// from concurrent workers never interleave.
type Recorder struct {
	mu        sync.Mutex
	out       io.Writer
	format    Format
	locator   Locator
	logger    *logging.Logger
	listeners []Listener
	written   int
}

// NewRecorder creates a recorder. A nil logger discards diagnostics.
func NewRecorder(out io.Writer, format Format, locator Locator, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Recorder{
		out:     out,
		format:  format,
		locator: locator,
		logger:  logger,
	}
}

// AddListener registers a callback invoked for every record, reported or not.
func (r *Recorder) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Build converts an event into a record without emitting it.
func (r *Recorder) Build(ev Event) Record {
	rec := Record{
		JD:         ev.JD,
		Kind:       ev.Kind,
		KindName:   ev.Kind.String(),
		BodyIndex:  ev.BodyIndex,
		BodyNumber: ev.Body.Number,
		BodyName:   ev.Body.Name,
		Mag:        ev.Sample.Mag,
		EarthDist:  ev.Sample.EarthDist,
		RA:         ev.Sample.RA,
		Dec:        ev.Sample.Dec,
		Elements:   ev.Body.Elements,
	}
	if ct, err := astro.InvJulianDay(ev.JD); err == nil {
		rec.Time = ct
		rec.UTC = ct.String()
		rec.Unix = astro.UnixFromJD(ev.JD)
	} else {
		r.logger.Warn("event date outside the calendar range", "jd", ev.JD, "body", ev.BodyIndex, "error", err)
	}
	rec.Constellation = constellation.Unknown
	if r.locator != nil {
		rec.Constellation = r.locator.Locate(ev.Sample.RA, ev.Sample.Dec)
	}
	return rec
}

// Emit records an event. Reported events are written to the output; every event is
// written to the diagnostic log at debug level.
func (r *Recorder) Emit(ev Event, report bool) error {
	rec := r.Build(ev)
	rec.Reported = report

	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if report {
		if werr := Write(r.out, r.format, rec); werr != nil {
			err = fmt.Errorf("write event: %w", werr)
		} else {
			r.written++
		}
	}

	if r.logger.Enabled(logging.LevelDebug) {
		r.logger.Debug("event", "line", FormatLine(rec), "reported", report)
	}

	for _, l := range r.listeners {
		l(rec)
	}
	return err
}

// Written returns the number of records written to the output.
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}
