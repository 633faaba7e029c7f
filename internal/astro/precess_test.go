package astro

import (
	"math"
	"testing"
)

func TestPrecess_SameEpoch(t *testing.T) {
	lng, lat := Precess(J2000, J2000, 1.0, 0.2)
	if math.Abs(lng-1.0) > 1e-12 || math.Abs(lat-0.2) > 1e-12 {
		t.Errorf("Precess(same epoch) = (%v, %v), want (1.0, 0.2)", lng, lat)
	}
}

func TestPrecess_GeneralPrecessionRate(t *testing.T) {
	// Ecliptic longitudes advance by ~50.29"/yr
	from := 2451544.5
	to := from + 100*365.2425
	lng, lat := Precess(from, to, 0, 0)

	gotArcsec := RadToDeg(WrapPi(lng)) * 3600
	if math.Abs(gotArcsec-5029.1) > 5 {
		t.Errorf("century precession = %.1f\", want ~5029\"", gotArcsec)
	}
	if math.Abs(RadToDeg(lat)*3600) > 60 {
		t.Errorf("latitude drift = %.1f\", want < 60\"", RadToDeg(lat)*3600)
	}
}

func TestPrecess_RoundTrip(t *testing.T) {
	from := J2000
	to := J2000 + 50*365.25
	lng, lat := Precess(from, to, 2.5, -0.4)
	backLng, backLat := Precess(to, from, lng, lat)

	if math.Abs(WrapPi(backLng-2.5)) > 1e-6 || math.Abs(backLat+0.4) > 1e-6 {
		t.Errorf("round trip = (%v, %v), want (2.5, -0.4)", backLng, backLat)
	}
}
