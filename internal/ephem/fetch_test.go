package ephem

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Ensure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(catalogueJSON))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data", "bodies.json")
	f := NewFetcher(time.Second, nil)

	downloaded, err := f.Ensure(context.Background(), srv.URL, dest, false)
	require.NoError(t, err)
	assert.True(t, downloaded)

	c, err := LoadCatalogueFile(dest, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	// Present file is not fetched again unless forced
	downloaded, err = f.Ensure(context.Background(), srv.URL, dest, false)
	require.NoError(t, err)
	assert.False(t, downloaded)
	assert.Equal(t, int32(1), hits.Load())

	downloaded, err = f.Ensure(context.Background(), srv.URL, dest, true)
	require.NoError(t, err)
	assert.True(t, downloaded)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "bodies.json")
	err := NewFetcher(time.Second, nil).Fetch(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files left behind")
}

func TestFetcher_MissingURL(t *testing.T) {
	_, err := NewFetcher(0, nil).Ensure(context.Background(), "", filepath.Join(t.TempDir(), "x"), false)
	assert.Error(t, err)
}

func TestFetcher_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFetcher(time.Second, nil).Fetch(ctx, srv.URL, filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}
