// Package record formats and emits detected events.
package record

import (
	"github.com/litescript/ls-oppositions/internal/astro"
	"github.com/litescript/ls-oppositions/internal/ephem"
)

// Kind identifies the type of extremum an event marks.
type Kind int

const (
	// Opposition is a local maximum of the angular distance from the Sun.
	Opposition Kind = iota
	// ClosestApproach is a local minimum of the distance from the Earth.
	ClosestApproach
	// PeakBrightness is a local minimum of the apparent magnitude.
	PeakBrightness
)

// String returns the event label used in output.
func (k Kind) String() string {
	switch k {
	case Opposition:
		return "Opposition"
	case ClosestApproach:
		return "Apogee"
	case PeakBrightness:
		return "PeakMag"
	default:
		return "Unknown"
	}
}

// Kinds lists every event kind in output order.
var Kinds = []Kind{Opposition, ClosestApproach, PeakBrightness}

// Event is a detected extremum as handed over by the scanner.
type Event struct {
	Kind      Kind
	JD        float64
	BodyIndex int
	Body      ephem.Body
	Sample    ephem.Sample
}

// Record is the immutable, fully tagged form of an event.
type Record struct {
	JD            float64            `json:"jd"`
	Time          astro.CalendarTime `json:"-"`
	UTC           string             `json:"utc"`
	Unix          float64            `json:"unix"`
	Kind          Kind               `json:"-"`
	KindName      string             `json:"kind"`
	BodyIndex     int                `json:"body_index"`
	BodyNumber    int                `json:"body_number,omitempty"`
	BodyName      string             `json:"name"`
	Mag           float64            `json:"mag"`
	EarthDist     float64            `json:"earth_dist_au"`
	RA            float64            `json:"ra_rad"`
	Dec           float64            `json:"dec_rad"`
	Constellation string             `json:"constellation"`
	Elements      ephem.Elements     `json:"elements"`
	Reported      bool               `json:"-"`
}
