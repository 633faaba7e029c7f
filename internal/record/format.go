package record

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Format selects how reported records are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Tokenize replaces whitespace with '@' so names stay a single column.
func Tokenize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '@'
		}
		return r
	}, s)
}

// label pads the kind name to a fixed 10-column field.
func label(k Kind) string {
	return fmt.Sprintf("%-10s", k.String())
}

// FormatLine renders a record as one fixed-column text line without a trailing newline.
func FormatLine(r Record) string {
	el := r.Elements
	return fmt.Sprintf("%10.1f %04d %02d %02d %02d %02d %s   %6.1f %8.3f   %10.6f %10.6f %s   "+
		"%07d %s %.16e %.16e %.16e %.16e %.16e %.16e %.16e",
		r.JD, r.Time.Year, r.Time.Month, r.Time.Day, r.Time.Hour, r.Time.Minute,
		label(r.Kind), r.Mag, r.EarthDist, r.RA, r.Dec, Tokenize(r.Constellation),
		r.BodyIndex, Tokenize(r.BodyName),
		el.SemiMajorAxis, el.Eccentricity, el.AscendingNode, el.Inclination,
		el.ArgPerihelion, el.MeanAnomaly, el.Epoch)
}

// Write renders a record in the given format followed by a newline.
func Write(w io.Writer, f Format, r Record) error {
	if f == FormatJSON {
		return json.NewEncoder(w).Encode(r)
	}
	_, err := fmt.Fprintln(w, FormatLine(r))
	return err
}
