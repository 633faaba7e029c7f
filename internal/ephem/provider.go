// Package ephem provides ephemerides for minor solar-system bodies.
package ephem

import "errors"

// ErrUnknownBody is returned when a body index is not in the catalogue.
var ErrUnknownBody = errors.New("unknown body")

// Sample is the computed state of one body at one instant.
// Angles are in radians, distances in AU unless noted.
type Sample struct {
	JD float64

	// Heliocentric equatorial position (J2000)
	X, Y, Z float64

	// Geocentric equatorial coordinates (J2000)
	RA  float64
	Dec float64

	Mag     float64 // visual magnitude
	Phase   float64 // illuminated fraction, 0-1
	AngSize float64 // apparent diameter, arcseconds
	PhySize float64 // physical diameter, meters
	Albedo  float64

	SunDist    float64
	EarthDist  float64
	SunAngDist float64 // elongation: angle Sun-Earth-body
	ThetaESO   float64 // angle Earth-Sun-body

	// Geocentric ecliptic coordinates, equinox of date
	EclipticLongitude float64
	EclipticLatitude  float64
	EclipticDistance  float64 // ecliptic longitude difference from the Sun, 0-π
}

// Provider computes body states. Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Evaluate returns the state of the catalogue body with the given index at jd.
	Evaluate(body int, jd float64) (Sample, error)
}
