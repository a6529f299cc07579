// SPDX-License-Identifier: MPL-2.0

// Package fetch downloads dependency archives into the local download cache.
//
// The cache uses presence semantics: an entry counts as fetched when the file
// exists with non-zero size. There is no checksum or freshness check; entries
// are keyed by fixed filename and persist across provisioning runs. A
// zero-byte file (a previously interrupted download) is treated as absent and
// fetched again.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// defaultTimeout bounds a single archive download.
const defaultTimeout = 10 * time.Minute

// ExistsAndNonEmpty reports whether path exists as a regular file with size
// greater than zero.
func ExistsAndNonEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

type (
	// Fetcher downloads remote archives to cache paths.
	Fetcher struct {
		client *http.Client
	}

	// Option configures a Fetcher.
	Option func(*Fetcher)
)

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a Fetcher with a timeout-bounded default client.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: defaultTimeout}
	}
	return f
}

// Fetch downloads url to dest. The body is written to a temp file next to
// dest and moved into place with os.Rename, so dest is never observed
// half-written by the presence check.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	renamed := false
	defer func() {
		if !renamed {
			// Best-effort removal of a partially written download.
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, copyErr := io.Copy(tmp, resp.Body); copyErr != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", dest, copyErr)
	}

	if closeErr := tmp.Close(); closeErr != nil {
		return fmt.Errorf("flushing %s: %w", dest, closeErr)
	}

	if renameErr := os.Rename(tmp.Name(), dest); renameErr != nil {
		return fmt.Errorf("moving download into place: %w", renameErr)
	}
	renamed = true

	return nil
}

// FetchIfAbsent downloads url to dest unless a non-empty file is already
// cached there. It reports whether a download actually happened.
func (f *Fetcher) FetchIfAbsent(ctx context.Context, url, dest string) (bool, error) {
	if ExistsAndNonEmpty(dest) {
		return false, nil
	}
	if err := f.Fetch(ctx, url, dest); err != nil {
		return false, err
	}
	return true, nil
}
