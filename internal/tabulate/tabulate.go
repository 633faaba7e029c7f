// Package tabulate writes text ephemerides: one line per instant, with a block of
// columns for each requested body.
package tabulate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/litescript/ls-oppositions/internal/astro"
	"github.com/litescript/ls-oppositions/internal/ephem"
	"github.com/litescript/ls-oppositions/internal/logging"
	"github.com/litescript/ls-oppositions/internal/record"
	"github.com/litescript/ls-oppositions/internal/scan"
)

// Format selects the columns written for each body.
type Format int

const (
	// FormatEcliptic writes heliocentric x y z in ecliptic coordinates.
	FormatEcliptic Format = -1
	// FormatPosition writes heliocentric x y z in equatorial J2000 coordinates.
	FormatPosition Format = 0
	// FormatRADec writes geocentric RA and Dec only.
	FormatRADec Format = 1
	// FormatPhotometry adds magnitude, phase and angular size to x y z RA Dec.
	FormatPhotometry Format = 2
	// FormatFull adds physical size, albedo, distances, elongation and ecliptic
	// coordinates of date.
	FormatFull Format = 3
)

// ParseFormat validates a numeric format level.
func ParseFormat(level int) (Format, error) {
	if level < int(FormatEcliptic) || level > int(FormatFull) {
		return 0, fmt.Errorf("output format %d out of range %d..%d", level, FormatEcliptic, FormatFull)
	}
	return Format(level), nil
}

// Steps returns the number of rows between start (inclusive) and end (exclusive).
func Steps(start, end, step float64) int {
	if step <= 0 || end <= start {
		return 0
	}
	return int(math.Ceil((end - start) / step))
}

// Table evaluates a fixed list of bodies on a time grid.
type Table struct {
	provider ephem.Provider
	bodies   []int
	format   Format
	locator  record.Locator
	workers  int
	logger   *logging.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithConstellations appends the name of the region holding each body.
func WithConstellations(l record.Locator) Option { return func(t *Table) { t.locator = l } }

// WithWorkers sets the worker count; 0 uses one per CPU.
func WithWorkers(n int) Option { return func(t *Table) { t.workers = n } }

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option { return func(t *Table) { t.logger = l } }

// New creates a table for the given catalogue indices.
func New(p ephem.Provider, bodies []int, format Format, opts ...Option) *Table {
	t := &Table{
		provider: p,
		bodies:   append([]int(nil), bodies...),
		format:   format,
		logger:   logging.Discard(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Write tabulates every step of the grid to w and returns the number of rows.
// Bodies of one row are evaluated in parallel; rows are written in time order.
func (t *Table) Write(ctx context.Context, w io.Writer, start, end, step float64) (int, error) {
	steps := Steps(start, end, step)
	pool := scan.NewWorkerPool(t.workers)
	defer pool.Close()

	bw := bufio.NewWriter(w)
	samples := make([]ephem.Sample, len(t.bodies))
	errs := make([]error, len(t.bodies))

	t.logger.Info("tabulating ephemeris", "bodies", len(t.bodies), "rows", steps, "format", int(t.format))
	for k := 0; k < steps; k++ {
		if err := ctx.Err(); err != nil {
			return k, fmt.Errorf("ephemeris interrupted at row %d: %w", k, err)
		}
		jd := start + float64(k)*step

		pool.Run(len(t.bodies), func(i int) {
			samples[i], errs[i] = t.provider.Evaluate(t.bodies[i], jd)
		})
		for i, err := range errs {
			if err != nil {
				return k, fmt.Errorf("body %d at JD %.6f: %w", t.bodies[i], jd, err)
			}
		}

		if err := t.writeRow(bw, jd, samples); err != nil {
			return k, err
		}
	}
	if err := bw.Flush(); err != nil {
		return steps, fmt.Errorf("write ephemeris: %w", err)
	}
	return steps, nil
}

func (t *Table) writeRow(w *bufio.Writer, jd float64, samples []ephem.Sample) error {
	fmt.Fprintf(w, "%.12f   ", jd)
	for _, s := range samples {
		if t.format != FormatRADec {
			pos := astro.Vec3{X: s.X, Y: s.Y, Z: s.Z}
			if t.format == FormatEcliptic {
				pos = astro.EquatorialToEcliptic(pos)
			}
			fmt.Fprintf(w, "%12.9f %12.9f %12.9f   ", pos.X, pos.Y, pos.Z)
		}
		if t.format >= FormatRADec {
			fmt.Fprintf(w, "%12.9f %12.9f   ", s.RA, s.Dec)
		}
		if t.format >= FormatPhotometry {
			fmt.Fprintf(w, "%6.3f %7.4f %12.9f   ", s.Mag, s.Phase, s.AngSize)
		}
		if t.format >= FormatFull {
			fmt.Fprintf(w, "%12.6e %8.5f %12.9f %12.9f %12.9f %12.9f %12.9f %12.9f %12.9f  ",
				s.PhySize, s.Albedo, s.SunDist, s.EarthDist, s.SunAngDist, s.ThetaESO,
				astro.WrapPi(s.EclipticLongitude), s.EclipticDistance, s.EclipticLatitude)
		}
		if t.locator != nil {
			fmt.Fprintf(w, "%s ", record.Tokenize(t.locator.Locate(s.RA, s.Dec)))
		}
	}
	_, err := w.WriteString("\n")
	return err
}
