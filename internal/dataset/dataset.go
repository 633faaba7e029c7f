// Package dataset loads the constellation boundaries and orbital-element catalogue
// named by the configuration, downloading them when missing.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/litescript/ls-oppositions/internal/config"
	"github.com/litescript/ls-oppositions/internal/constellation"
	"github.com/litescript/ls-oppositions/internal/ephem"
	"github.com/litescript/ls-oppositions/internal/logging"
)

// Loader resolves data files against a configuration.
type Loader struct {
	cfg     *config.Config
	logger  *logging.Logger
	fetcher *ephem.Fetcher
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(cfg *config.Config, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{
		cfg:     cfg,
		logger:  logger,
		fetcher: ephem.NewFetcher(cfg.Data.FetchTimeout, logger),
	}
}

// Regions loads the constellation boundaries and their names.
func (l *Loader) Regions(ctx context.Context) (*constellation.Set, error) {
	path := l.cfg.Path(l.cfg.Data.Boundaries)
	if url := l.cfg.Data.BoundariesURL; url != "" {
		if _, err := l.fetcher.Ensure(ctx, url, path, l.cfg.Data.Refresh); err != nil {
			return nil, fmt.Errorf("fetch constellation boundaries: %w", err)
		}
	}

	limits := constellation.Limits{MaxRegions: l.cfg.Limits.MaxRegions, MaxPoints: l.cfg.Limits.MaxRegionPoints}
	regions, err := constellation.LoadFiles(path, l.cfg.Path(l.cfg.Data.Names), limits)
	if err != nil {
		return nil, err
	}
	l.logger.Info("constellations loaded", "regions", regions.Len(), "path", path)
	return regions, nil
}

// Catalogue loads the orbital elements. Without a file or a download URL it falls
// back to the built-in bright bodies.
func (l *Loader) Catalogue(ctx context.Context) (*ephem.Catalogue, error) {
	path := l.cfg.Path(l.cfg.Data.Catalogue)
	if url := l.cfg.Data.CatalogueURL; url != "" {
		if _, err := l.fetcher.Ensure(ctx, url, path, l.cfg.Data.Refresh); err != nil {
			return nil, fmt.Errorf("fetch catalogue: %w", err)
		}
	}

	cat, err := ephem.LoadCatalogueFile(path, l.cfg.Limits.MaxBodies)
	if errors.Is(err, os.ErrNotExist) && l.cfg.Data.CatalogueURL == "" {
		l.logger.Warn("catalogue not found, using built-in bodies", "path", path)
		cat, err = ephem.DefaultCatalogue(), nil
	}
	if err != nil {
		return nil, err
	}
	l.logger.Info("catalogue loaded", "bodies", cat.Len(), "secure", len(cat.Secure()))
	return cat, nil
}
