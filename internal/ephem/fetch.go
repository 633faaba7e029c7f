package ephem

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/litescript/ls-oppositions/internal/logging"
)

// RequestTimeout is the default HTTP request timeout for data downloads.
const RequestTimeout = 5 * time.Minute

// Fetcher downloads catalogue and constellation data files.
type Fetcher struct {
	client *http.Client
	logger *logging.Logger
}

// NewFetcher creates a fetcher. A nil logger discards output.
func NewFetcher(timeout time.Duration, logger *logging.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = RequestTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Ensure downloads url to dest unless dest already exists or force is set.
// It reports whether a download took place.
func (f *Fetcher) Ensure(ctx context.Context, url, dest string, force bool) (bool, error) {
	if _, err := os.Stat(dest); err == nil && !force {
		f.logger.Debug("data file present, not downloading", "path", dest)
		return false, nil
	}
	if url == "" {
		return false, fmt.Errorf("%s missing and no download URL configured", dest)
	}
	if err := f.Fetch(ctx, url, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Fetch downloads url to dest, replacing dest atomically on success.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	f.logger.Info("fetching data file", "url", url, "path", dest)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("install %s: %w", dest, err)
	}

	f.logger.Info("fetched data file", "path", dest, "bytes", n, "duration", time.Since(start))
	return nil
}
