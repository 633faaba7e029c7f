package astro

import "math"

// horner evaluates c[0] + c[1]x + c[2]x^2 + ...
func horner(x float64, c ...float64) float64 {
	i := len(c) - 1
	y := c[i]
	for i > 0 {
		i--
		y = y*x + c[i]
	}
	return y
}

// Precess moves ecliptic coordinates (radians) from one epoch to another, both given as
// Julian day numbers (Meeus, Astronomical Algorithms, 21.5 and 21.7).
func Precess(epochFrom, epochTo, lng, lat float64) (float64, float64) {
	// Julian years
	yFrom := (epochFrom-2451544.5)/365.2425 + 2000
	yTo := (epochTo-2451544.5)/365.2425 + 2000

	const (
		d = math.Pi / 180
		s = d / 3600
	)
	cosSmallAngle := math.Cos(10 * d / 60)

	T := (yFrom - 2000) * 0.01
	etaCoeff := []float64{
		horner(T, 47.0029*s, -0.06603*s, 0.000598*s),
		-0.03302*s + 0.000598*s*T,
		0.000060 * s,
	}
	piCoeff := []float64{
		horner(T, 174.876384*d, 3289.4789*s, 0.60622*s),
		-869.8089*s - 0.50491*s*T,
		0.03536 * s,
	}
	pCoeff := []float64{
		horner(T, 5029.0966*s, 2.22226*s, -0.000042*s),
		1.11113*s - 0.000042*s*T,
		-0.000006 * s,
	}

	t := (yTo - yFrom) * 0.01
	piA := horner(t, piCoeff...)
	p := horner(t, pCoeff...) * t
	eta := horner(t, etaCoeff...) * t
	sEta, cEta := math.Sincos(eta)

	sBeta, cBeta := math.Sincos(lat)
	sd, cd := math.Sincos(piA - lng)

	A := cEta*cBeta*sd - sEta*sBeta
	B := cBeta * cd
	C := cEta*sBeta + sEta*cBeta*sd

	outLng := p + piA - math.Atan2(A, B)
	var outLat float64
	if C < cosSmallAngle {
		outLat = math.Asin(C)
	} else {
		// near the pole
		outLat = math.Acos(math.Hypot(A, B))
	}
	return outLng, outLat
}
