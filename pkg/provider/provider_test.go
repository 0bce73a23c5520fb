package provider

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/menuforge/menuforge/pkg/errors"
	"github.com/menuforge/menuforge/pkg/httputil"
)

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	if err := os.WriteFile(path, []byte("fake-png"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFileProvider(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := p.Generate(context.Background(), "ignored", 100, 100)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if string(data) != "fake-png" {
		t.Errorf("data = %q", data)
	}
}

func TestFileProviderMissing(t *testing.T) {
	p, err := NewFileProvider(filepath.Join(t.TempDir(), "nope.png"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Generate(context.Background(), "", 100, 100)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFileProviderRejectsTraversal(t *testing.T) {
	if _, err := NewFileProvider("../../etc/passwd"); err == nil {
		t.Error("expected path validation error")
	}
}

func TestHTTPProvider(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Get("query"))
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	data, err := p.Generate(context.Background(), "rustic tavern menu", 1650, 2550)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if !bytes.Equal(data, []byte("image-bytes")) {
		t.Errorf("data = %q", data)
	}
	if got := gotQuery.Load(); got != "rustic tavern menu" {
		t.Errorf("query = %q, want prompt", got)
	}
}

func TestHTTPProviderStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   errors.Code
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			p, err := NewHTTPProvider(srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			_, err = p.Generate(context.Background(), "x", 10, 10)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestHTTPProviderCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer srv.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewHTTPProvider(srv.URL, WithCache(cache))
	if err != nil {
		t.Fatal(err)
	}

	first, err := p.Generate(context.Background(), "marble", 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Generate(context.Background(), "marble", 100, 100)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("cached bytes differ from fetched bytes")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (second should hit cache)", got)
	}

	// A different size is a different cache entry.
	if _, err := p.Generate(context.Background(), "marble", 200, 200); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestNewHTTPProviderRejectsScheme(t *testing.T) {
	if _, err := NewHTTPProvider("ftp://images.example.com"); err == nil {
		t.Error("expected URL validation error")
	}
}
