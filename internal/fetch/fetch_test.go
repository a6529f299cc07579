// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func newArchiveServer(t *testing.T, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestExistsAndNonEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.tar.gz")
	if ExistsAndNonEmpty(missing) {
		t.Error("missing file must not count as present")
	}

	empty := filepath.Join(dir, "empty.tar.gz")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ExistsAndNonEmpty(empty) {
		t.Error("zero-byte file must be treated as absent")
	}

	full := filepath.Join(dir, "full.tar.gz")
	if err := os.WriteFile(full, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !ExistsAndNonEmpty(full) {
		t.Error("non-empty file must count as present")
	}

	if ExistsAndNonEmpty(dir) {
		t.Error("a directory must not count as a cached file")
	}
}

func TestFetchIfAbsent_DownloadsWhenMissing(t *testing.T) {
	t.Parallel()

	srv, hits := newArchiveServer(t, "archive-bytes")
	dest := filepath.Join(t.TempDir(), "dep.tar.gz")

	fetched, err := NewFetcher().FetchIfAbsent(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fetched {
		t.Error("expected a download for a missing cache entry")
	}
	if hits.Load() != 1 {
		t.Errorf("expected one request, got %d", hits.Load())
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "archive-bytes" {
		t.Fatalf("unexpected cache contents: %q, %v", data, err)
	}
}

func TestFetchIfAbsent_EmptyFileTriggersRefetch(t *testing.T) {
	t.Parallel()

	srv, hits := newArchiveServer(t, "fresh-bytes")
	dest := filepath.Join(t.TempDir(), "dep.tar.gz")

	// A previously interrupted download left a zero-byte entry.
	if err := os.WriteFile(dest, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	fetched, err := NewFetcher().FetchIfAbsent(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fetched {
		t.Error("zero-byte cache entry must trigger a fresh download")
	}
	if hits.Load() != 1 {
		t.Errorf("expected one request, got %d", hits.Load())
	}
}

func TestFetchIfAbsent_CacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()

	srv, hits := newArchiveServer(t, "ignored")
	dest := filepath.Join(t.TempDir(), "dep.tar.gz")
	if err := os.WriteFile(dest, []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	fetched, err := NewFetcher().FetchIfAbsent(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched {
		t.Error("expected cache hit to skip the download")
	}
	if hits.Load() != 0 {
		t.Errorf("expected no requests on cache hit, got %d", hits.Load())
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "cached" {
		t.Errorf("cache entry must not be overwritten, got %q", data)
	}
}

func TestFetch_HTTPErrorLeavesNoEntry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "dep.tar.gz")

	if err := NewFetcher().Fetch(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("a failed download must not leave a cache entry behind")
	}
}

func TestFetch_CreatesCacheDirectory(t *testing.T) {
	t.Parallel()

	srv, _ := newArchiveServer(t, "bytes")
	dest := filepath.Join(t.TempDir(), "download", "dep.tar.gz")

	if err := NewFetcher().Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ExistsAndNonEmpty(dest) {
		t.Error("expected the cache entry under the created directory")
	}
}
