package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrResource is matched by every *ResourceError
var ErrResource = errors.New("dataset unavailable")

// ResourceError reports a dataset that could not be located, downloaded or opened.
type ResourceError struct {
	Location string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("dataset %s: %v", e.Location, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	return []error{ErrResource, e.Err}
}

// Auth carries TMB developer credentials, sent as app_id / app_key query parameters
type Auth struct {
	AppID  string
	AppKey string
}

// Fetcher resolves dataset locations to local files
type Fetcher struct {
	CacheDir string
	MaxAge   time.Duration
	Auth     Auth
	Client   *http.Client
}

// NewFetcher creates a Fetcher with a 30s HTTP timeout
func NewFetcher(cacheDir string, maxAge time.Duration, auth Auth) *Fetcher {
	return &Fetcher{
		CacheDir: cacheDir,
		MaxAge:   maxAge,
		Auth:     auth,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Resolve returns a local path for loc. Local paths must exist. http(s) URLs are
// downloaded into the cache directory unless a cached copy younger than MaxAge
// exists. If a refresh fails but an older cached copy is present, the stale copy is
// used and a warning logged.
func (f *Fetcher) Resolve(ctx context.Context, loc string) (string, error) {
	if !isRemote(loc) {
		if _, err := os.Stat(loc); err != nil {
			return "", &ResourceError{Location: loc, Err: err}
		}
		return loc, nil
	}

	cachePath := filepath.Join(f.CacheDir, cacheName(loc))
	if !isStaleOrMissing(cachePath, f.MaxAge) {
		log.Printf("Source: using cached %s", cachePath)
		return cachePath, nil
	}

	if err := os.MkdirAll(f.CacheDir, 0755); err != nil {
		return "", &ResourceError{Location: loc, Err: err}
	}

	log.Printf("Source: downloading %s", loc)
	err := f.download(ctx, loc, cachePath)
	if err == nil {
		return cachePath, nil
	}

	if _, statErr := os.Stat(cachePath); statErr == nil {
		log.Printf("Source: warning: refresh of %s failed, using stale cache: %v", loc, err)
		return cachePath, nil
	}
	return "", &ResourceError{Location: loc, Err: err}
}

func (f *Fetcher) download(ctx context.Context, loc, dest string) error {
	u, err := url.Parse(loc)
	if err != nil {
		return err
	}
	if f.Auth.AppID != "" && f.Auth.AppKey != "" {
		q := u.Query()
		q.Set("app_id", f.Auth.AppID)
		q.Set("app_key", f.Auth.AppKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	// Write to a temp file first so a failed transfer never clobbers the cache.
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to read body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}

func isRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// cacheName derives a stable file name from the whole URL: a short hash of loc
// followed by the base name of its path.
func cacheName(loc string) string {
	sum := sha256.Sum256([]byte(loc))
	prefix := hex.EncodeToString(sum[:6])

	base := "dataset.csv"
	if u, err := url.Parse(loc); err == nil {
		if b := path.Base(u.Path); b != "/" && b != "." {
			base = b
		}
	}
	return prefix + "-" + base
}

func isStaleOrMissing(p string, maxAge time.Duration) bool {
	info, err := os.Stat(p)
	if err != nil {
		return true
	}
	if maxAge <= 0 {
		return true
	}
	return time.Since(info.ModTime()) > maxAge
}
