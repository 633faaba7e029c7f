package astro

import "math"

// AngDist returns the great-circle distance between two (RA, Dec) points, in radians.
// Uses the chord length, which stays accurate for small separations.
func AngDist(ra0, dec0, ra1, dec1 float64) float64 {
	p0 := UnitVector(ra0, dec0)
	p1 := UnitVector(ra1, dec1)

	sep2 := p0.Sub(p1).Dot(p0.Sub(p1))
	if sep2 <= 0 {
		return 0
	}
	chord := math.Sqrt(sep2)
	if chord >= 2 {
		return math.Pi
	}
	return 2 * math.Asin(chord/2)
}

// UnitVector returns the unit vector toward (ra, dec). X points to RA 90°, Y to RA 0°.
func UnitVector(ra, dec float64) Vec3 {
	return Vec3{
		X: math.Sin(ra) * math.Cos(dec),
		Y: math.Cos(ra) * math.Cos(dec),
		Z: math.Sin(dec),
	}
}

// WrapPi wraps an angle into the interval (-π, π].
func WrapPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Wrap2Pi wraps an angle into the interval [0, 2π).
func Wrap2Pi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
