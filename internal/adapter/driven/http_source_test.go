package driven

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPSource_Fetch(t *testing.T) {
	const body = "#EXTM3U\n#EXTINF:-1,One\nhttp://example.com/1\n"

	tests := []struct {
		name      string
		status    int
		wantError error
	}{
		{name: "ok", status: http.StatusOK},
		{name: "not found", status: http.StatusNotFound, wantError: ErrUnexpectedStatus},
		{name: "no content", status: http.StatusNoContent, wantError: ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			data, err := NewHTTPSource(time.Second, "").Fetch(context.Background(), server.URL)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("Fetch() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != body {
				t.Errorf("Fetch() = %q, want %q", data, body)
			}
		})
	}
}

func TestFileSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.m3u")
	if err := os.WriteFile(path, []byte("#EXTM3U\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := NewFileSource().Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "#EXTM3U\n" {
		t.Errorf("Fetch() = %q", data)
	}

	if _, err := NewFileSource().Fetch(context.Background(), filepath.Join(dir, "missing.m3u")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Fetch() of missing file error = %v, want not exist", err)
	}
}
