package constellation

import (
	"math"

	"github.com/litescript/ls-oppositions/internal/astro"
)

// Locate returns the long name of the first region, in load order, containing (ra, dec)
// in radians. It returns Unknown when no region matches.
func (s *Set) Locate(ra, dec float64) string {
	for i := range s.regions {
		if s.regions[i].contains(ra, dec) {
			return s.regions[i].Name
		}
	}
	return Unknown
}

// contains reports whether the region's boundary winds around (ra, dec).
// The winding sum also trips for the antipodal point, so regions whose first vertex is
// more than 90° away are rejected up front.
func (r *Region) contains(ra, dec float64) bool {
	n := len(r.Points)
	if n == 0 {
		return false
	}
	if astro.AngDist(ra, dec, r.Points[0].RA, r.Points[0].Dec) > math.Pi/2 {
		return false
	}

	rot := newPoleRotation(ra, dec)
	var winding float64
	prev := rot.azimuth(r.Points[0])
	for j := 0; j < n; j++ {
		next := rot.azimuth(r.Points[(j+1)%n])
		winding += astro.WrapPi(prev - next)
		prev = next
	}
	return math.Abs(winding) > math.Pi
}

// poleRotation rotates the sphere so that a query point sits at the pole.
type poleRotation struct {
	sinRA, cosRA float64
	sinA, cosA   float64
}

func newPoleRotation(ra, dec float64) poleRotation {
	sinRA, cosRA := math.Sincos(ra)
	sinA, cosA := math.Sincos(math.Pi/2 - dec)
	return poleRotation{sinRA: sinRA, cosRA: cosRA, sinA: sinA, cosA: cosA}
}

// azimuth returns the position angle of p about the query point.
func (pr poleRotation) azimuth(p Point) float64 {
	v := astro.UnitVector(p.RA, p.Dec)

	// rotate about the polar axis by -RA
	x := v.X*pr.cosRA - v.Y*pr.sinRA
	y := v.X*pr.sinRA + v.Y*pr.cosRA

	// tilt by the query's colatitude
	y = y*pr.cosA - v.Z*pr.sinA

	return math.Atan2(x, y)
}
