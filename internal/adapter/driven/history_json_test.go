package driven

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alorle/iptv-checker/internal/history"
)

func TestHistoryJSONRepository_LoadMissing(t *testing.T) {
	repo := NewHistoryJSONRepository(filepath.Join(t.TempDir(), DefaultHistoryFile))

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("expected empty snapshot, got %v", snap)
	}
}

func TestHistoryJSONRepository_LoadCoerces(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultHistoryFile)
	content := `{"a.m3u": 42, "b.m3u": ["BBC", "extra"], "c.m3u": {"channels": ["X"]}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := NewHistoryJSONRepository(path).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap["a.m3u"].Count() != 42 {
		t.Errorf("a.m3u = %d, want 42", snap["a.m3u"].Count())
	}
	if snap["b.m3u"].Count() != 0 {
		t.Errorf("b.m3u = %d, want 0", snap["b.m3u"].Count())
	}
	if !snap["c.m3u"].IsNamedSet() {
		t.Error("c.m3u should be a named set")
	}
}

func TestHistoryJSONRepository_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultHistoryFile)
	repo := NewHistoryJSONRepository(path)
	ctx := context.Background()

	if err := repo.Save(ctx, history.Snapshot{"old.m3u": history.Count(1)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, history.Snapshot{"new.m3u": history.NamedSet([]string{"Ñ"})}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := snap["old.m3u"]; ok {
		t.Error("Save() should drop sources not in the snapshot")
	}
	if got := snap["new.m3u"].Names(); len(got) != 1 || got[0] != "Ñ" {
		t.Errorf("new.m3u names = %v", got)
	}
}

func TestHistoryJSONRepository_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultHistoryFile)
	if err := os.WriteFile(path, []byte("[1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewHistoryJSONRepository(path).Load(context.Background()); err == nil {
		t.Fatal("expected error for malformed document")
	}
}
