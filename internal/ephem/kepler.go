package ephem

import (
	"fmt"
	"math"

	"github.com/litescript/ls-oppositions/internal/astro"
)

const (
	// gaussK is the Gaussian gravitational constant, radians per day.
	gaussK = 0.01720209895

	defaultAlbedo = 0.15

	keplerTolerance  = 1e-12
	keplerIterations = 50
)

// earthElements are mean elements of the Earth-Moon barycentre (Standish, JPL),
// valid 1800-2050. Rates are per Julian century from J2000.
var earthElements = struct {
	a, aDot       float64
	e, eDot       float64
	i, iDot       float64
	l, lDot       float64
	peri, periDot float64
}{
	a: 1.00000261, aDot: 0.00000562,
	e: 0.01671123, eDot: -0.00004392,
	i: -0.00001531, iDot: -0.01294668,
	l: 100.46457166, lDot: 35999.37244981,
	peri: 102.93768193, periDot: 0.32327364,
}

// KeplerProvider propagates catalogue bodies on fixed two-body orbits and observes them
// from an analytic Earth orbit. It is read-only and safe for concurrent use.
type KeplerProvider struct {
	catalogue *Catalogue
}

// NewKeplerProvider creates a provider over a catalogue.
func NewKeplerProvider(c *Catalogue) *KeplerProvider {
	return &KeplerProvider{catalogue: c}
}

// Name implements Provider.
func (p *KeplerProvider) Name() string {
	return "Kepler"
}

// Evaluate implements Provider.
func (p *KeplerProvider) Evaluate(body int, jd float64) (Sample, error) {
	b, ok := p.catalogue.Body(body)
	if !ok {
		return Sample{}, fmt.Errorf("%w: index %d", ErrUnknownBody, body)
	}
	if b.Elements.Eccentricity >= 1 || b.Elements.SemiMajorAxis <= 0 {
		return Sample{}, fmt.Errorf("body %d (%s): open orbit not supported", body, b.Name)
	}

	earth := EarthPosition(jd)
	helio := HeliocentricPosition(b.Elements, jd)

	// Observe the body where it was when the light left it.
	lightDays := astro.LightTimeFromAU(helio.Sub(earth).Norm()) / 86400
	helio = HeliocentricPosition(b.Elements, jd-lightDays)

	return observe(b, jd, helio, earth), nil
}

// observe derives all observables from heliocentric ecliptic positions of body and Earth.
func observe(b Body, jd float64, helio, earth astro.Vec3) Sample {
	geo := helio.Sub(earth)

	r := helio.Norm()
	delta := geo.Norm()

	s := Sample{
		JD:        jd,
		SunDist:   r,
		EarthDist: delta,
	}

	eq := astro.EclipticToEquatorial(helio)
	s.X, s.Y, s.Z = eq.X, eq.Y, eq.Z
	s.RA, s.Dec = astro.LonLat(astro.EclipticToEquatorial(geo))

	// Earth->Sun is -earth
	s.SunAngDist = astro.AngleBetween(earth.Scale(-1), geo)
	s.ThetaESO = astro.AngleBetween(earth, helio)
	phaseAngle := astro.AngleBetween(helio, geo)
	s.Phase = (1 + math.Cos(phaseAngle)) / 2

	s.Mag = hgMagnitude(b.AbsMag, b.Slope, r, delta, phaseAngle)

	s.Albedo = b.Albedo
	if s.Albedo <= 0 {
		s.Albedo = defaultAlbedo
	}
	diameterKm := b.DiameterKm
	if diameterKm <= 0 {
		diameterKm = 1329 / math.Sqrt(s.Albedo) * math.Pow(10, -b.AbsMag/5)
	}
	s.PhySize = diameterKm * 1000
	s.AngSize = astro.RadToDeg(2*math.Atan(astro.KmToAU(diameterKm)/2/delta)) * 3600

	lon, lat := astro.LonLat(geo)
	lon, lat = astro.Precess(astro.J2000, jd, lon, lat)
	s.EclipticLongitude = astro.Wrap2Pi(lon)
	s.EclipticLatitude = lat

	sunLon, sunLat := astro.LonLat(earth.Scale(-1))
	sunLon, _ = astro.Precess(astro.J2000, jd, sunLon, sunLat)
	s.EclipticDistance = math.Abs(astro.WrapPi(s.EclipticLongitude - sunLon))

	return s
}

// hgMagnitude implements the IAU H-G magnitude system.
func hgMagnitude(h, g, r, delta, phaseAngle float64) float64 {
	tanHalf := math.Tan(phaseAngle / 2)
	phi1 := math.Exp(-3.33 * math.Pow(tanHalf, 0.63))
	phi2 := math.Exp(-1.87 * math.Pow(tanHalf, 1.22))
	return h + 5*math.Log10(r*delta) - 2.5*math.Log10((1-g)*phi1+g*phi2)
}

// HeliocentricPosition returns the heliocentric ecliptic J2000 position, in AU, of a
// body on an elliptical orbit at jd.
func HeliocentricPosition(el Elements, jd float64) astro.Vec3 {
	n := gaussK / math.Pow(el.SemiMajorAxis, 1.5)
	m := astro.DegToRad(el.MeanAnomaly) + n*(jd-el.Epoch)
	return orbitPosition(
		el.SemiMajorAxis,
		el.Eccentricity,
		astro.DegToRad(el.Inclination),
		astro.DegToRad(el.AscendingNode),
		astro.DegToRad(el.ArgPerihelion),
		m,
	)
}

// EarthPosition returns the heliocentric ecliptic J2000 position of the Earth-Moon
// barycentre, in AU.
func EarthPosition(jd float64) astro.Vec3 {
	el := earthElements
	t := (jd - astro.J2000) / 36525

	peri := el.peri + el.periDot*t
	meanLon := el.l + el.lDot*t
	return orbitPosition(
		el.a+el.aDot*t,
		el.e+el.eDot*t,
		astro.DegToRad(el.i+el.iDot*t),
		0,
		astro.DegToRad(peri),
		astro.DegToRad(meanLon-peri),
	)
}

// orbitPosition rotates a Keplerian position from the orbital plane into the ecliptic.
// All angles in radians.
func orbitPosition(a, e, incl, node, peri, meanAnomaly float64) astro.Vec3 {
	E := solveKepler(astro.WrapPi(meanAnomaly), e)
	sinE, cosE := math.Sincos(E)

	// perifocal coordinates
	xv := a * (cosE - e)
	yv := a * math.Sqrt(1-e*e) * sinE

	sinO, cosO := math.Sincos(node)
	sinW, cosW := math.Sincos(peri)
	sinI, cosI := math.Sincos(incl)

	return astro.Vec3{
		X: (cosO*cosW-sinO*sinW*cosI)*xv + (-cosO*sinW-sinO*cosW*cosI)*yv,
		Y: (sinO*cosW+cosO*sinW*cosI)*xv + (-sinO*sinW+cosO*cosW*cosI)*yv,
		Z: (sinW*sinI)*xv + (cosW*sinI)*yv,
	}
}

// solveKepler solves E - e sin E = M by Newton iteration.
func solveKepler(m, e float64) float64 {
	E := m
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < keplerIterations; i++ {
		d := (E - e*math.Sin(E) - m) / (1 - e*math.Cos(E))
		E -= d
		if math.Abs(d) < keplerTolerance {
			break
		}
	}
	return E
}
