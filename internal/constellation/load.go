package constellation

import (
	"bufio"
	"bytes"
	"compress/gzip"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Fixed columns of the boundary file: RA in hours from column 0, declination sign at
// column 11, unsigned declination in degrees from column 12, region code in columns 23-26.
const (
	boundarySignCol  = 11
	boundaryDecCol   = 12
	boundaryCodeCol  = 23
	boundaryCodeEnd  = 27
	boundaryMinWidth = 28
)

//go:embed names.dat
var defaultNames []byte

// DefaultNames returns the built-in table of IAU abbreviations and long names.
func DefaultNames() io.Reader {
	return bytes.NewReader(defaultNames)
}

// LoadFiles reads the boundary and name files from disk. Files ending in ".gz" are
// decompressed. An empty namesPath uses DefaultNames.
func LoadFiles(boundsPath, namesPath string, limits Limits) (*Set, error) {
	bounds, closeBounds, err := open(boundsPath)
	if err != nil {
		return nil, fmt.Errorf("open constellation boundaries: %w", err)
	}
	defer closeBounds()

	names := DefaultNames()
	if namesPath != "" {
		nf, closeNames, err := open(namesPath)
		if err != nil {
			return nil, fmt.Errorf("open constellation names: %w", err)
		}
		defer closeNames()
		names = nf
	}

	return Load(bounds, names, limits)
}

func open(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, func() { f.Close() }, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return zr, func() {
		zr.Close()
		f.Close()
	}, nil
}

// Load parses boundary vertices and short/long name pairs and builds a Set.
// Every region must have a long name and every name entry must match a region.
func Load(bounds, names io.Reader, limits Limits) (*Set, error) {
	regions, err := parseBoundaries(bounds, limits)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(regions))
	for i, r := range regions {
		index[normalizeCode(r.Code)] = i
	}

	sc := bufio.NewScanner(names)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.HasPrefix(line, "#") || len(line) < 4 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("constellation names line %d: expected short and long name", lineNo)
		}
		i, ok := index[normalizeCode(fields[0])]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCode, fields[0])
		}
		regions[i].Name = longName(fields[1:])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read constellation names: %w", err)
	}

	for _, r := range regions {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingName, r.Code)
		}
	}

	return NewSet(regions, limits)
}

// parseBoundaries reads vertices in file order. A new region starts whenever the
// code column changes.
func parseBoundaries(r io.Reader, limits Limits) ([]Region, error) {
	var regions []Region
	seen := make(map[string]bool)
	current := ""

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.HasPrefix(line, "#") || len(line) < boundaryMinWidth {
			continue
		}

		raHours, err := strconv.ParseFloat(strings.TrimSpace(line[:boundarySignCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("constellation boundaries line %d: bad RA: %w", lineNo, err)
		}
		decDeg, err := strconv.ParseFloat(strings.TrimSpace(line[boundaryDecCol:boundaryCodeCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("constellation boundaries line %d: bad declination: %w", lineNo, err)
		}
		if line[boundarySignCol] == '-' {
			decDeg = -decDeg
		}

		code := strings.TrimSpace(line[boundaryCodeCol:boundaryCodeEnd])
		key := normalizeCode(code)
		if key != current {
			if seen[key] {
				return nil, fmt.Errorf("%w: %s (line %d)", ErrDuplicateCode, code, lineNo)
			}
			if limits.MaxRegions > 0 && len(regions) >= limits.MaxRegions {
				return nil, fmt.Errorf("%w: more than %d regions", ErrCapacity, limits.MaxRegions)
			}
			seen[key] = true
			current = key
			regions = append(regions, Region{Code: code})
		}

		reg := &regions[len(regions)-1]
		if limits.MaxPoints > 0 && len(reg.Points) >= limits.MaxPoints {
			return nil, fmt.Errorf("%w: region %s has more than %d vertices", ErrCapacity, code, limits.MaxPoints)
		}
		reg.Points = append(reg.Points, Point{
			RA:  raHours / 12 * math.Pi,
			Dec: decDeg / 180 * math.Pi,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read constellation boundaries: %w", err)
	}
	return regions, nil
}

// longName joins the name tokens, splitting CamelCase words such as "CanisMajor".
func longName(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		for j, r := range tok {
			if j > 0 && unicode.IsUpper(r) {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
