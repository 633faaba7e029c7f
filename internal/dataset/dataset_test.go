package dataset

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-oppositions/internal/config"
	"github.com/litescript/ls-oppositions/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.Data.Boundaries = "bounds.dat"
	cfg.Data.BoundariesURL = ""
	return &cfg
}

const boundsFixture = ` 0.0000000 -10.0000000 ORI  O
 6.0000000 -10.0000000 ORI  O
 6.0000000 +10.0000000 ORI  O
 0.0000000 +10.0000000 ORI  O
`

func TestLoader_Regions(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.Dir, "bounds.dat"), []byte(boundsFixture), 0o644))

	regions, err := NewLoader(cfg, nil).Regions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, regions.Len())
	assert.Equal(t, "Orion", regions.Locate(math.Pi/4, 0))
}

func TestLoader_RegionsDownloaded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(boundsFixture))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Data.BoundariesURL = srv.URL + "/bound_20.dat"

	regions, err := NewLoader(cfg, nil).Regions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, regions.Len())
	assert.FileExists(t, filepath.Join(cfg.Data.Dir, "bounds.dat"))
}

func TestLoader_RegionsMissing(t *testing.T) {
	_, err := NewLoader(testConfig(t), nil).Regions(context.Background())
	assert.Error(t, err)
}

func TestLoader_CatalogueFallback(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewWithFormat(&logs, logging.LevelWarn, logging.FormatText)

	cat, err := NewLoader(testConfig(t), logger).Catalogue(context.Background())
	require.NoError(t, err)
	_, ok := cat.Find("Vesta")
	assert.True(t, ok)
	assert.Contains(t, logs.String(), "catalogue not found, using built-in bodies")
}

func TestLoader_CatalogueFile(t *testing.T) {
	cfg := testConfig(t)
	body := `[{"number": 7, "name": "Iris", "h": 5.6, "secure": true,
	  "elements": {"a": 2.386, "e": 0.229, "i": 5.5, "node": 259.5, "peri": 145.3, "m": 100, "epoch": 2460600.5}}]`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.Dir, cfg.Data.Catalogue), []byte(body), 0o644))

	cat, err := NewLoader(cfg, nil).Catalogue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestLoader_CatalogueURLRequired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.CatalogueURL = "http://127.0.0.1:1/asteroids.json"

	_, err := NewLoader(cfg, nil).Catalogue(context.Background())
	assert.ErrorContains(t, err, "fetch catalogue")
}
