package astro

import (
	"errors"
	"fmt"
	"math"
)

// British calendar reform: the day after 2 September 1752 (Julian) was 14 September 1752 (Gregorian).
const (
	lastJulianDate     = 17520902
	firstGregorianDate = 17520914

	// SwitchOverJD is the Julian day number at which the Gregorian calendar took effect.
	SwitchOverJD = 2361222.0

	// J2000 is the Julian day number of the J2000.0 epoch.
	J2000 = 2451545.0

	unixEpochJD = 2440587.5
)

var (
	// ErrCalendarGap is returned for dates lost in the Julian to Gregorian transition.
	ErrCalendarGap = errors.New("the requested date never happened in the British calendar: it was lost in the transition from the Julian to the Gregorian calendar")

	// ErrDateRange is returned when a calendar field is outside its valid range.
	ErrDateRange = errors.New("date out of range")
)

// CalendarTime is a broken-down calendar date and time of day.
type CalendarTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second float64
}

// String formats the calendar time as YYYY-MM-DD hh:mm:ss.
func (c CalendarTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, int(c.Second))
}

func rangeError(msg string) error {
	return fmt.Errorf("%w: %s", ErrDateRange, msg)
}

// JulianDay converts a calendar date and time into a Julian day number.
// Dates up to 1752-09-02 use the Julian calendar, dates from 1752-09-14 the Gregorian.
func JulianDay(year, month, day, hour, minute, second int) (float64, error) {
	switch {
	case year < -1e6 || year > 1e6:
		return 0, rangeError("Supplied year is too big.")
	case day < 1 || day > 31:
		return 0, rangeError("Supplied day number should be in the range 1-31.")
	case hour < 0 || hour > 23:
		return 0, rangeError("Supplied hour number should be in the range 0-23.")
	case minute < 0 || minute > 59:
		return 0, rangeError("Supplied minute number should be in the range 0-59.")
	case second < 0 || second > 59:
		return 0, rangeError("Supplied second number should be in the range 0-59.")
	case month < 1 || month > 12:
		return 0, rangeError("Supplied month number should be in the range 1-12.")
	}

	required := 10000*year + 100*month + day

	// January and February count as months 13 and 14 of the previous year
	if month <= 2 {
		month += 12
		year--
	}

	var b int
	switch {
	case required <= lastJulianDate:
		b = -2 + (year+4716)/4 - 1179
	case required >= firstGregorianDate:
		b = year/400 - year/100 + year/4
	default:
		return 0, ErrCalendarGap
	}

	jd := 365.0*float64(year) - 679004.0 + 2400000.5 + float64(b) +
		math.Floor(30.6001*float64(month+1)) + float64(day)
	dayFraction := (float64(hour) + float64(minute)/60 + float64(second)/3600) / 24

	return jd + dayFraction, nil
}

// InvJulianDay converts a Julian day number into a calendar date and time of day.
func InvJulianDay(jd float64) (CalendarTime, error) {
	if jd < -1e8 || jd > 1e8 || math.IsNaN(jd) {
		return CalendarTime{}, rangeError("Supplied Julian Day number is too big.")
	}

	var ct CalendarTime

	dayFraction := (jd + 0.5) - math.Floor(jd+0.5)
	ct.Hour = int(math.Floor(24 * dayFraction))
	ct.Minute = int(math.Floor(math.Mod(1440*dayFraction, 60)))
	ct.Second = math.Mod(86400*dayFraction, 60)

	// a: whole days, b: century leap years skipped since the reform
	a := int64(jd + 0.5)
	var c int64
	if float64(a) < SwitchOverJD {
		c = a + 1524
	} else {
		b := int64((float64(a) - 1867216.25) / 36524.25)
		c = a + b - b/4 + 1525
	}
	d := int64((float64(c) - 122.1) / 365.25)
	e := 365*d + d/4
	f := int64(float64(c-e) / 30.6001)

	ct.Day = int(c - e - int64(30.6001*float64(f)))
	ct.Month = int(f - 1)
	if f >= 14 {
		ct.Month -= 12
	}
	ct.Year = int(d - 4715)
	if ct.Month >= 3 {
		ct.Year--
	}

	return ct, nil
}

// UnixFromJD converts a Julian date into unix seconds.
func UnixFromJD(jd float64) float64 {
	return 86400.0 * (jd - unixEpochJD)
}
