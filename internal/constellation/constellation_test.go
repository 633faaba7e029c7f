package constellation

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-oppositions/internal/astro"
)

type vertex struct {
	raHours float64
	decDeg  float64
}

func boundaryLines(code string, verts ...vertex) string {
	var b strings.Builder
	for _, v := range verts {
		sign := '+'
		if v.decDeg < 0 {
			sign = '-'
		}
		fmt.Fprintf(&b, "%10.7f %c%10.7f %-4s O\n", v.raHours, sign, math.Abs(v.decDeg), code)
	}
	return b.String()
}

func fixtureBounds() string {
	return "# test boundaries\n" +
		boundaryLines("SQA", vertex{0.5, 0}, vertex{2.5, 0}, vertex{2.5, 20}, vertex{0.5, 20}) +
		"short line\n" +
		boundaryLines("SQB", vertex{12, -30}, vertex{14, -30}, vertex{14, -10}, vertex{12, -10}) +
		boundaryLines("CAP", vertex{0, 70}, vertex{6, 70}, vertex{12, 70}, vertex{18, 70}) +
		boundaryLines("BIG", vertex{0, -10}, vertex{4, -10}, vertex{4, 30}, vertex{0, 30})
}

const fixtureNames = `# short long
SQA AlphaSquare
sqb Beta Region
CAP PolarCap
BIG BigBox
`

func loadFixture(t *testing.T) *Set {
	t.Helper()
	set, err := Load(strings.NewReader(fixtureBounds()), strings.NewReader(fixtureNames), DefaultLimits())
	require.NoError(t, err)
	return set
}

func radec(raHours, decDeg float64) (float64, float64) {
	return raHours / 12 * math.Pi, astro.DegToRad(decDeg)
}

func TestLoad(t *testing.T) {
	set := loadFixture(t)

	require.Equal(t, 4, set.Len())

	r := set.regions[0]
	assert.Equal(t, "Alpha Square", r.Name)
	assert.Len(t, r.Points, 4)
	assert.InDelta(t, 0.5/12*math.Pi, r.Points[0].RA, 1e-12)

	r = set.regions[1]
	assert.Equal(t, "Beta Region", r.Name, "codes match case-insensitively")
	assert.InDelta(t, astro.DegToRad(-30), r.Points[0].Dec, 1e-12)

	codes := make([]string, 0, set.Len())
	for _, reg := range set.regions {
		codes = append(codes, reg.Code)
	}
	assert.Equal(t, []string{"SQA", "SQB", "CAP", "BIG"}, codes)
}

func TestLocate(t *testing.T) {
	set := loadFixture(t)

	tests := []struct {
		name    string
		raHours float64
		decDeg  float64
		want    string
	}{
		{"inside square", 1.5, 10, "Alpha Square"},
		{"inside southern region", 13, -20, "Beta Region"},
		{"only the larger region", 3.5, 25, "Big Box"},
		{"polar cap", 8, 80, "Polar Cap"},
		{"celestial pole", 0, 90, "Polar Cap"},
		{"empty sky", 8, 0, Unknown},
		{"antipode of square point", 13.5, -5, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra, dec := radec(tt.raHours, tt.decDeg)
			assert.Equal(t, tt.want, set.Locate(ra, dec))
		})
	}
}

func TestLocate_FirstMatchWins(t *testing.T) {
	set := loadFixture(t)

	// Inside both SQA and BIG; SQA was loaded first
	ra, dec := radec(1.5, 5)
	assert.Equal(t, "Alpha Square", set.Locate(ra, dec))
}

func TestLocate_Vertex(t *testing.T) {
	set := loadFixture(t)

	ra, dec := radec(0.5, 0)
	assert.NotPanics(t, func() {
		got := set.Locate(ra, dec)
		assert.NotEmpty(t, got)
	})
}

func TestLocate_Concurrent(t *testing.T) {
	set := loadFixture(t)

	ra, dec := radec(13, -20)
	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = set.Locate(ra, dec)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "Beta Region", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		bounds  string
		names   string
		limits  Limits
		wantErr error
	}{
		{
			name:    "missing long name",
			bounds:  fixtureBounds(),
			names:   "SQA AlphaSquare\nSQB BetaRegion\nBIG BigBox\n",
			limits:  DefaultLimits(),
			wantErr: ErrMissingName,
		},
		{
			name:    "name for unknown code",
			bounds:  fixtureBounds(),
			names:   fixtureNames + "ZZZ Nowhere\n",
			limits:  DefaultLimits(),
			wantErr: ErrUnknownCode,
		},
		{
			name:    "too many regions",
			bounds:  fixtureBounds(),
			names:   fixtureNames,
			limits:  Limits{MaxRegions: 2, MaxPoints: 1024},
			wantErr: ErrCapacity,
		},
		{
			name:    "too many vertices",
			bounds:  fixtureBounds(),
			names:   fixtureNames,
			limits:  Limits{MaxRegions: 90, MaxPoints: 3},
			wantErr: ErrCapacity,
		},
		{
			name: "code split into two runs",
			bounds: boundaryLines("SQA", vertex{0.5, 0}, vertex{2.5, 0}, vertex{2.5, 20}) +
				boundaryLines("SQB", vertex{12, -30}, vertex{14, -30}, vertex{14, -10}) +
				boundaryLines("SQA", vertex{0.5, 20}),
			names:   "SQA A\nSQB B\n",
			limits:  DefaultLimits(),
			wantErr: ErrDuplicateCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.bounds), strings.NewReader(tt.names), tt.limits)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_BadNumber(t *testing.T) {
	bounds := "  x.5000000 + 0.0000000 SQA  O\n"
	_, err := Load(strings.NewReader(bounds), strings.NewReader("SQA A\n"), DefaultLimits())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad RA")
}

func TestNewSet_Validation(t *testing.T) {
	tri := []Point{{0, 0}, {0.1, 0}, {0.1, 0.1}}

	_, err := NewSet([]Region{{Code: "A", Name: "A", Points: tri[:2]}}, DefaultLimits())
	assert.Error(t, err)

	_, err = NewSet([]Region{{Code: "A", Points: tri}}, DefaultLimits())
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = NewSet([]Region{{Code: "A", Name: "A", Points: tri}, {Code: "a", Name: "B", Points: tri}}, DefaultLimits())
	assert.ErrorIs(t, err, ErrDuplicateCode)

	set, err := NewSet([]Region{{Code: "A", Name: "Tri", Points: tri}}, Limits{})
	require.NoError(t, err)
	assert.Equal(t, "Tri", set.Locate(0.07, 0.03))
}

func TestLongName(t *testing.T) {
	tests := []struct {
		tokens []string
		want   string
	}{
		{[]string{"Andromeda"}, "Andromeda"},
		{[]string{"CanisMajor"}, "Canis Major"},
		{[]string{"Canis", "Major"}, "Canis Major"},
		{[]string{"CoronaAustralis"}, "Corona Australis"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, longName(tt.tokens))
	}
}

func TestLoadFiles_Gzip(t *testing.T) {
	dir := t.TempDir()
	boundsPath := filepath.Join(dir, "bound_20.dat.gz")
	namesPath := filepath.Join(dir, "names.dat")

	f, err := os.Create(boundsPath)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(fixtureBounds()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(namesPath, []byte(fixtureNames), 0o644))

	set, err := LoadFiles(boundsPath, namesPath, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, 4, set.Len())
	assert.Equal(t, "Alpha Square", set.Locate(radec(1.5, 10)))
}

func TestLoadFiles_Missing(t *testing.T) {
	_, err := LoadFiles(filepath.Join(t.TempDir(), "absent.dat"), "", DefaultLimits())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultNames(t *testing.T) {
	sc := bufio.NewScanner(DefaultNames())
	codes := map[string]string{}
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		require.Len(t, fields, 2, line)
		_, dup := codes[fields[0]]
		require.False(t, dup, fields[0])
		codes[fields[0]] = longName(fields[1:])
	}
	require.NoError(t, sc.Err())

	assert.Len(t, codes, 89)
	assert.Equal(t, "Serpens Caput", codes["SER1"])
	assert.Equal(t, "Serpens Cauda", codes["SER2"])
	assert.Equal(t, "Ursa Major", codes["UMA"])
}
