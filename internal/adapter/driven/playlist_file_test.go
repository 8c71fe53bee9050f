package driven

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPlaylistFileWriter_Write(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "list.m3u")
	w := NewPlaylistFileWriter()
	ctx := context.Background()

	if err := w.Write(ctx, target, []byte("#EXTM3U\nfirst\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write(ctx, target, []byte("#EXTM3U\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#EXTM3U\n" {
		t.Errorf("content = %q, want full overwrite", data)
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestPlaylistFileWriter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := filepath.Join(t.TempDir(), "list.m3u")
	if err := NewPlaylistFileWriter().Write(ctx, target, []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("target should not be created")
	}
}
