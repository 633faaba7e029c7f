package astro

import (
	"errors"
	"math"
	"testing"
)

func TestJulianDay(t *testing.T) {
	tests := []struct {
		name               string
		y, mo, d, h, mi, s int
		want               float64
	}{
		{"J2000", 2000, 1, 1, 12, 0, 0, 2451545.0},
		{"unix epoch", 1970, 1, 1, 0, 0, 0, 2440587.5},
		{"last julian day", 1752, 9, 2, 12, 0, 0, 2361221.0},
		{"first gregorian day", 1752, 9, 14, 12, 0, 0, 2361222.0},
		{"julian calendar", 1066, 10, 14, 0, 0, 0, 2110700.5},
		{"leap day", 2024, 2, 29, 18, 0, 0, 2460370.25},
		{"sputnik", 1957, 10, 4, 19, 26, 24, 2436116.31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JulianDay(tt.y, tt.mo, tt.d, tt.h, tt.mi, tt.s)
			if err != nil {
				t.Fatalf("JulianDay() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("JulianDay() = %.5f, want %.5f", got, tt.want)
			}
		})
	}
}

func TestJulianDay_CalendarGap(t *testing.T) {
	for day := 3; day <= 13; day++ {
		_, err := JulianDay(1752, 9, day, 12, 0, 0)
		if !errors.Is(err, ErrCalendarGap) {
			t.Errorf("1752-09-%02d: err = %v, want ErrCalendarGap", day, err)
		}
	}
}

func TestJulianDay_FieldValidation(t *testing.T) {
	tests := []struct {
		name               string
		y, mo, d, h, mi, s int
		wantMsg            string
	}{
		{"month zero", 2000, 0, 1, 0, 0, 0, "Supplied month number should be in the range 1-12."},
		{"month 13", 2000, 13, 1, 0, 0, 0, "Supplied month number should be in the range 1-12."},
		{"day zero", 2000, 1, 0, 0, 0, 0, "Supplied day number should be in the range 1-31."},
		{"hour 24", 2000, 1, 1, 24, 0, 0, "Supplied hour number should be in the range 0-23."},
		{"minute 60", 2000, 1, 1, 0, 60, 0, "Supplied minute number should be in the range 0-59."},
		{"second 60", 2000, 1, 1, 0, 0, 60, "Supplied second number should be in the range 0-59."},
		{"huge year", 2000000, 1, 1, 0, 0, 0, "Supplied year is too big."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JulianDay(tt.y, tt.mo, tt.d, tt.h, tt.mi, tt.s)
			if !errors.Is(err, ErrDateRange) {
				t.Fatalf("err = %v, want ErrDateRange", err)
			}
			if got := err.Error(); got != ErrDateRange.Error()+": "+tt.wantMsg {
				t.Errorf("err = %q, want message %q", got, tt.wantMsg)
			}
		})
	}
}

func TestInvJulianDay(t *testing.T) {
	tests := []struct {
		jd   float64
		want CalendarTime
	}{
		{2451545.0, CalendarTime{Year: 2000, Month: 1, Day: 1, Hour: 12}},
		{2361221.0, CalendarTime{Year: 1752, Month: 9, Day: 2, Hour: 12}},
		{2361222.0, CalendarTime{Year: 1752, Month: 9, Day: 14, Hour: 12}},
		{2460370.25, CalendarTime{Year: 2024, Month: 2, Day: 29, Hour: 18}},
	}

	for _, tt := range tests {
		got, err := InvJulianDay(tt.jd)
		if err != nil {
			t.Fatalf("InvJulianDay(%v) error = %v", tt.jd, err)
		}
		if got.Year != tt.want.Year || got.Month != tt.want.Month || got.Day != tt.want.Day || got.Hour != tt.want.Hour {
			t.Errorf("InvJulianDay(%v) = %v, want %v", tt.jd, got, tt.want)
		}
	}
}

func TestInvJulianDay_OutOfRange(t *testing.T) {
	for _, jd := range []float64{2e8, -2e8, math.NaN()} {
		if _, err := InvJulianDay(jd); !errors.Is(err, ErrDateRange) {
			t.Errorf("InvJulianDay(%v) err = %v, want ErrDateRange", jd, err)
		}
	}
}

func TestJulianDay_RoundTrip(t *testing.T) {
	dates := [][3]int{
		{1600, 3, 1}, {1752, 8, 31}, {1752, 9, 1}, {1752, 9, 2},
		{1752, 9, 14}, {1752, 9, 15}, {1900, 2, 28}, {2000, 2, 29}, {2100, 12, 31},
		{-500, 6, 15},
	}

	for _, d := range dates {
		jd, err := JulianDay(d[0], d[1], d[2], 6, 0, 0)
		if err != nil {
			t.Fatalf("JulianDay(%v) error = %v", d, err)
		}
		ct, err := InvJulianDay(jd)
		if err != nil {
			t.Fatalf("InvJulianDay(%v) error = %v", jd, err)
		}
		if ct.Year != d[0] || ct.Month != d[1] || ct.Day != d[2] || ct.Hour != 6 || ct.Minute != 0 {
			t.Errorf("round trip %v -> %.5f -> %v", d, jd, ct)
		}
	}
}

func TestUnixJDConversion(t *testing.T) {
	if got := UnixFromJD(2440587.5); got != 0 {
		t.Errorf("UnixFromJD(unix epoch) = %v, want 0", got)
	}
	if got := UnixFromJD(2440588.5); got != 86400 {
		t.Errorf("UnixFromJD(2440588.5) = %v, want 86400", got)
	}
}
