// Package scan runs the two-pass event search over a body catalogue.
package scan

import "github.com/litescript/ls-oppositions/internal/ephem"

// Extremum is a bit set of the extrema detected for one body at one step.
type Extremum uint8

const (
	// MaxSunAngle marks a local maximum of the Sun angular distance (opposition).
	MaxSunAngle Extremum = 1 << iota
	// MinEarthDistance marks a local minimum of the Earth distance (closest approach).
	MinEarthDistance
	// MinMagnitude marks a local minimum of the apparent magnitude (peak brightness).
	MinMagnitude
)

// Has reports whether e contains x.
func (e Extremum) Has(x Extremum) bool { return e&x != 0 }

// Seed values for the two most recent samples of each signal. They can never form a
// spurious extremum with the first real samples, and detection is additionally held
// back until the third step.
const (
	seedSun1   = 800
	seedSun2   = 900
	seedEarth1 = 900
	seedEarth2 = 800
	seedMag1   = 900
	seedMag2   = 800
)

// minDetectStep is the first step index at which extrema may fire.
const minDetectStep = 3

type trail struct {
	sun1, sun2     float64
	earth1, earth2 float64
	mag1, mag2     float64
}

// Tracker holds the last two values of each tracked signal per body slot.
// Each slot must only be touched by one goroutine at a time.
type Tracker struct {
	slots []trail
}

// NewTracker creates a tracker with n seeded slots.
func NewTracker(n int) *Tracker {
	t := &Tracker{slots: make([]trail, n)}
	for i := range t.slots {
		t.Reset(i)
	}
	return t
}

// Len returns the number of slots.
func (t *Tracker) Len() int { return len(t.slots) }

// Reset restores the seed values for one slot.
func (t *Tracker) Reset(slot int) {
	t.slots[slot] = trail{
		sun1: seedSun1, sun2: seedSun2,
		earth1: seedEarth1, earth2: seedEarth2,
		mag1: seedMag1, mag2: seedMag2,
	}
}

// Observe feeds the sample taken at step into slot. When detect is true it reports
// which extrema the previous sample formed. The history always shifts, whether or
// not anything was detected.
func (t *Tracker) Observe(slot, step int, s ephem.Sample, detect bool) Extremum {
	tr := &t.slots[slot]

	var fired Extremum
	if detect && step >= minDetectStep {
		if tr.sun1 > s.SunAngDist && tr.sun1 > tr.sun2 {
			fired |= MaxSunAngle
		}
		if tr.earth1 < s.EarthDist && tr.earth1 < tr.earth2 {
			fired |= MinEarthDistance
		}
		if tr.mag1 < s.Mag && tr.mag1 < tr.mag2 {
			fired |= MinMagnitude
		}
	}

	tr.sun2, tr.sun1 = tr.sun1, s.SunAngDist
	tr.earth2, tr.earth1 = tr.earth1, s.EarthDist
	tr.mag2, tr.mag1 = tr.mag1, s.Mag

	return fired
}
