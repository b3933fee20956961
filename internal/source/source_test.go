package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvBody = "NOM_ESTACIO,NOM_LINIA\nCatalunya,L1\n"

func TestResolveLocalPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "estacions_linia.csv")
	require.NoError(t, os.WriteFile(p, []byte(csvBody), 0644))

	f := NewFetcher(dir, time.Hour, Auth{})
	got, err := f.Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestResolveMissingLocalPath(t *testing.T) {
	f := NewFetcher(t.TempDir(), time.Hour, Auth{})
	_, err := f.Resolve(context.Background(), "/tmp/does-not-exist-estacions.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResource))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var re *ResourceError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "/tmp/does-not-exist-estacions.csv", re.Location)
}

func TestResolveDownloadsWithAuthAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "my-id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "my-key", r.URL.Query().Get("app_key"))
		w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	cache := t.TempDir()
	f := NewFetcher(cache, time.Hour, Auth{AppID: "my-id", AppKey: "my-key"})

	loc := srv.URL + "/data/estacions_linia.csv"
	got, err := f.Resolve(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, cacheName(loc)), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))

	// Fresh cache: no second request
	_, err = f.Resolve(context.Background(), srv.URL+"/data/estacions_linia.csv")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestResolveStaleCacheFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cache := t.TempDir()
	loc := srv.URL + "/accessos_estacio_linia.csv"
	cached := filepath.Join(cache, cacheName(loc))
	require.NoError(t, os.WriteFile(cached, []byte(csvBody), 0644))
	old := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(cached, old, old))

	f := NewFetcher(cache, 7*24*time.Hour, Auth{})
	got, err := f.Resolve(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

func TestResolveDownloadFailureWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), time.Hour, Auth{})
	_, err := f.Resolve(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResource))
	assert.Contains(t, err.Error(), "404")
}

func TestIsStaleOrMissing(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.csv")

	assert.True(t, isStaleOrMissing(p, time.Hour), "missing file")

	require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	assert.False(t, isStaleOrMissing(p, time.Hour), "fresh file")
	assert.True(t, isStaleOrMissing(p, 0), "zero max age always refreshes")

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(p, old, old))
	assert.True(t, isStaleOrMissing(p, time.Hour), "stale file")
}

func TestCacheName(t *testing.T) {
	assert.True(t, strings.HasSuffix(cacheName("https://example.org/v1/estacions.csv?x=1"), "-estacions.csv"))
	assert.True(t, strings.HasSuffix(cacheName("https://example.org/"), "-dataset.csv"))
	assert.Equal(t, cacheName("https://example.org/a.csv"), cacheName("https://example.org/a.csv"))

	distinct := []string{
		"https://example.org/stations/download",
		"https://example.org/accesses/download",
		"https://example.org/download?file=stations",
		"https://example.org/download?file=accesses",
	}
	seen := make(map[string]string)
	for _, loc := range distinct {
		name := cacheName(loc)
		assert.NotContains(t, seen, name, "%s collides with %s", loc, seen[name])
		seen[name] = loc
	}
}

func TestResolveSameBaseNameDifferentURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body of " + r.URL.Path))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), time.Hour, Auth{})
	ctx := context.Background()

	stations, err := f.Resolve(ctx, srv.URL+"/stations/download")
	require.NoError(t, err)
	accesses, err := f.Resolve(ctx, srv.URL+"/accesses/download")
	require.NoError(t, err)
	assert.NotEqual(t, stations, accesses)

	data, err := os.ReadFile(stations)
	require.NoError(t, err)
	assert.Equal(t, "body of /stations/download", string(data))

	data, err = os.ReadFile(accesses)
	require.NoError(t, err)
	assert.Equal(t, "body of /accesses/download", string(data))
}
