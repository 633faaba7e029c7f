package ephem

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Elements are osculating heliocentric ecliptic (J2000) orbital elements.
// Angles are in degrees.
type Elements struct {
	SemiMajorAxis float64 `json:"a"` // AU
	Eccentricity  float64 `json:"e"`
	Inclination   float64 `json:"i"`
	AscendingNode float64 `json:"node"`  // Ω
	ArgPerihelion float64 `json:"peri"`  // ω
	MeanAnomaly   float64 `json:"m"`     // at Epoch
	Epoch         float64 `json:"epoch"` // Julian day
}

// Body is a catalogue entry for a minor body.
type Body struct {
	Number     int      `json:"number"`
	Name       string   `json:"name"`
	Elements   Elements `json:"elements"`
	AbsMag     float64  `json:"h"` // H
	Slope      float64  `json:"g"` // G
	DiameterKm float64  `json:"diameter_km,omitempty"`
	Albedo     float64  `json:"albedo,omitempty"`

	// SecureOrbit marks bodies whose orbits are well enough determined to be scanned.
	SecureOrbit bool `json:"secure"`
}

// Label returns the body's designation, e.g. "(4) Vesta".
func (b Body) Label() string {
	if b.Number > 0 {
		return "(" + strconv.Itoa(b.Number) + ") " + b.Name
	}
	return b.Name
}

// Catalogue is an ordered, read-only list of bodies addressed by index.
type Catalogue struct {
	bodies []Body
	byName map[string]int
}

// NewCatalogue builds a catalogue. maxBodies <= 0 means no limit.
// Bodies on open (e >= 1) or malformed orbits are marked insecure.
func NewCatalogue(bodies []Body, maxBodies int) (*Catalogue, error) {
	if maxBodies > 0 && len(bodies) > maxBodies {
		return nil, fmt.Errorf("catalogue has %d bodies, limit %d", len(bodies), maxBodies)
	}

	c := &Catalogue{
		bodies: make([]Body, len(bodies)),
		byName: make(map[string]int, len(bodies)),
	}
	for i, b := range bodies {
		if b.Elements.Eccentricity >= 1 || b.Elements.Eccentricity < 0 || b.Elements.SemiMajorAxis <= 0 {
			b.SecureOrbit = false
		}
		if b.Slope == 0 {
			b.Slope = 0.15
		}
		c.bodies[i] = b
		c.byName[strings.ToLower(b.Name)] = i
		if b.Number > 0 {
			c.byName[strconv.Itoa(b.Number)] = i
		}
	}
	return c, nil
}

// LoadCatalogue decodes a JSON array of bodies.
func LoadCatalogue(r io.Reader, maxBodies int) (*Catalogue, error) {
	var bodies []Body
	if err := json.NewDecoder(r).Decode(&bodies); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return NewCatalogue(bodies, maxBodies)
}

// LoadCatalogueFile reads a JSON catalogue from disk. Files ending in .gz are decompressed.
func LoadCatalogueFile(path string, maxBodies int) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open catalogue: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return LoadCatalogue(r, maxBodies)
}

// Len returns the number of bodies.
func (c *Catalogue) Len() int {
	return len(c.bodies)
}

// Body returns the body at index i.
func (c *Catalogue) Body(i int) (Body, bool) {
	if i < 0 || i >= len(c.bodies) {
		return Body{}, false
	}
	return c.bodies[i], true
}

// Find looks a body up by name (case-insensitive) or number.
func (c *Catalogue) Find(key string) (int, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(key))]
	return i, ok
}

// Secure returns the indices of bodies with secure orbits, in catalogue order.
func (c *Catalogue) Secure() []int {
	var out []int
	for i, b := range c.bodies {
		if b.SecureOrbit {
			out = append(out, i)
		}
	}
	return out
}

// DefaultCatalogue returns a small built-in catalogue of bright main-belt asteroids
// and Eros. Elements are approximate osculating values at JD 2460600.5.
func DefaultCatalogue() *Catalogue {
	c, _ := NewCatalogue(defaultBodies, 0)
	return c
}

var defaultBodies = []Body{
	{Number: 1, Name: "Ceres", AbsMag: 3.34, Slope: 0.12, DiameterKm: 939.4, Albedo: 0.09, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 2.7656, Eccentricity: 0.0796, Inclination: 10.588, AscendingNode: 80.25, ArgPerihelion: 73.29, MeanAnomaly: 145.84, Epoch: 2460600.5}},
	{Number: 2, Name: "Pallas", AbsMag: 4.13, Slope: 0.11, DiameterKm: 513, Albedo: 0.16, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 2.7705, Eccentricity: 0.2306, Inclination: 34.93, AscendingNode: 172.89, ArgPerihelion: 310.9, MeanAnomaly: 128.6, Epoch: 2460600.5}},
	{Number: 3, Name: "Juno", AbsMag: 5.33, Slope: 0.32, DiameterKm: 246.6, Albedo: 0.21, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 2.6697, Eccentricity: 0.2562, Inclination: 12.99, AscendingNode: 169.84, ArgPerihelion: 247.8, MeanAnomaly: 217.6, Epoch: 2460600.5}},
	{Number: 4, Name: "Vesta", AbsMag: 3.20, Slope: 0.32, DiameterKm: 525.4, Albedo: 0.42, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 2.3615, Eccentricity: 0.0902, Inclination: 7.144, AscendingNode: 103.7, ArgPerihelion: 151.5, MeanAnomaly: 26.8, Epoch: 2460600.5}},
	{Number: 6, Name: "Hebe", AbsMag: 5.71, Slope: 0.24, DiameterKm: 185, Albedo: 0.27, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 2.4254, Eccentricity: 0.2032, Inclination: 14.74, AscendingNode: 138.6, ArgPerihelion: 239.6, MeanAnomaly: 115.0, Epoch: 2460600.5}},
	{Number: 7, Name: "Iris", AbsMag: 5.51, Slope: 0.15, DiameterKm: 200, Albedo: 0.28, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 2.3864, Eccentricity: 0.2296, Inclination: 5.52, AscendingNode: 259.5, ArgPerihelion: 145.3, MeanAnomaly: 120.0, Epoch: 2460600.5}},
	{Number: 10, Name: "Hygiea", AbsMag: 5.43, Slope: 0.15, DiameterKm: 434, Albedo: 0.07, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 3.1457, Eccentricity: 0.1072, Inclination: 3.83, AscendingNode: 283.1, ArgPerihelion: 312.5, MeanAnomaly: 40.0, Epoch: 2460600.5}},
	{Number: 433, Name: "Eros", AbsMag: 10.4, Slope: 0.46, DiameterKm: 16.8, Albedo: 0.25, SecureOrbit: true,
		Elements: Elements{SemiMajorAxis: 1.4580, Eccentricity: 0.2228, Inclination: 10.83, AscendingNode: 304.3, ArgPerihelion: 178.9, MeanAnomaly: 310.0, Epoch: 2460600.5}},
}
