// Package constellation classifies sky positions into named constellation regions.
package constellation

import (
	"errors"
	"fmt"
	"strings"
)

// Unknown is returned by Locate when no region contains the point.
const Unknown = "Unknown"

var (
	// ErrMissingName is returned when a boundary region has no long name.
	ErrMissingName = errors.New("constellation has no long name")

	// ErrUnknownCode is returned when a name entry matches no boundary region.
	ErrUnknownCode = errors.New("no boundary region for constellation code")

	// ErrDuplicateCode is returned when a region code appears in two separate runs of boundary data.
	ErrDuplicateCode = errors.New("duplicate constellation code")

	// ErrCapacity is returned when the data exceeds configured region or vertex limits.
	ErrCapacity = errors.New("constellation data exceeds capacity")
)

// Point is a vertex on the celestial sphere, in radians.
type Point struct {
	RA  float64
	Dec float64
}

// Region is a closed boundary polygon on the celestial sphere.
// The last vertex connects back to the first.
type Region struct {
	Code   string
	Name   string
	Points []Point
}

// Limits bounds the amount of boundary data accepted at load time.
type Limits struct {
	MaxRegions int
	MaxPoints  int // per region
}

// DefaultLimits returns limits large enough for the IAU boundary set.
func DefaultLimits() Limits {
	return Limits{
		MaxRegions: 90,
		MaxPoints:  1024,
	}
}

// Set is an immutable, ordered collection of regions.
// It is safe for concurrent use once constructed.
type Set struct {
	regions []Region
}

// NewSet validates regions and builds a Set. Region order is preserved and decides
// which region wins when boundaries overlap.
func NewSet(regions []Region, limits Limits) (*Set, error) {
	if limits.MaxRegions > 0 && len(regions) > limits.MaxRegions {
		return nil, fmt.Errorf("%w: %d regions, limit %d", ErrCapacity, len(regions), limits.MaxRegions)
	}

	s := &Set{regions: make([]Region, len(regions))}
	seen := make(map[string]bool, len(regions))
	for i, r := range regions {
		key := normalizeCode(r.Code)
		if key == "" {
			return nil, fmt.Errorf("region %d: empty code", i)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, r.Code)
		}
		if r.Name == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingName, r.Code)
		}
		if len(r.Points) < 3 {
			return nil, fmt.Errorf("region %s: need at least 3 vertices, got %d", r.Code, len(r.Points))
		}
		if limits.MaxPoints > 0 && len(r.Points) > limits.MaxPoints {
			return nil, fmt.Errorf("%w: region %s has %d vertices, limit %d", ErrCapacity, r.Code, len(r.Points), limits.MaxPoints)
		}

		pts := make([]Point, len(r.Points))
		copy(pts, r.Points)
		s.regions[i] = Region{Code: r.Code, Name: r.Name, Points: pts}
		seen[key] = true
	}
	return s, nil
}

// Len returns the number of regions.
func (s *Set) Len() int {
	return len(s.regions)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
