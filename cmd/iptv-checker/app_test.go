package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-checker/internal/adapter/driven"

	"github.com/alorle/iptv-checker/internal/application"
	"github.com/alorle/iptv-checker/internal/config"
	"github.com/alorle/iptv-checker/internal/history"
)

func TestPipelineSources(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{
		{Name: "local", Kind: config.KindFile, Path: "lists/local.m3u", Target: "lists/local.m3u"},
		{Name: "photocall", Kind: config.KindDiscover, URL: "https://example.com/tv", Target: "lists/photocall.m3u", Selector: "a.channel"},
	}

	sources, discoverers := pipelineSources(cfg)

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Kind != application.SourceFile || sources[0].Location != "lists/local.m3u" {
		t.Errorf("unexpected file source: %+v", sources[0])
	}
	if sources[1].Kind != application.SourceDiscover || sources[1].Location != "https://example.com/tv" {
		t.Errorf("unexpected discover source: %+v", sources[1])
	}
	if len(discoverers) != 1 {
		t.Fatalf("expected 1 discoverer, got %d", len(discoverers))
	}
	if _, ok := discoverers["photocall"]; !ok {
		t.Error("expected discoverer keyed by source name")
	}
}

func TestOpenHistoryBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		file    string
	}{
		{name: "json", backend: "json", file: "history.json"},
		{name: "bolt", backend: "bolt", file: "data/history.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.History.Backend = tt.backend
			cfg.History.File = filepath.Join(t.TempDir(), tt.file)

			repo, closeRepo, err := openHistory(cfg)
			if err != nil {
				t.Fatalf("openHistory: %v", err)
			}
			defer func() {
				if err := closeRepo(); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			want := history.Snapshot{"sports": history.Count(12)}
			if err := repo.Save(t.Context(), want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := repo.Load(t.Context())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got["sports"].Count() != 12 {
				t.Errorf("expected count 12, got %d", got["sports"].Count())
			}
		})
	}
}

func TestPrintSnapshot(t *testing.T) {
	snap := history.Snapshot{
		"b": history.NamedSet([]string{"One", "Two"}),
		"a": history.Count(3),
	}

	var buf bytes.Buffer
	if err := printSnapshot(&buf, snap); err != nil {
		t.Fatalf("printSnapshot: %v", err)
	}

	want := "a\t3\tcount\nb\t2\tnames\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestNotifiers(t *testing.T) {
	cfg := config.Default()
	cfg.Report.File = filepath.Join(t.TempDir(), "report.txt")

	got := notifiers(cfg, newDiscardLogger())
	if len(got) != 1 || got[0].Name() != "file" {
		t.Fatalf("expected only the file notifier, got %d", len(got))
	}

	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "42"
	got = notifiers(cfg, newDiscardLogger())
	if len(got) != 2 || got[1].Name() != "telegram" {
		t.Fatalf("expected file and telegram notifiers, got %d", len(got))
	}
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunHistory_LockedBoltContinuesRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")

	holder, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("failed to open holder db: %v", err)
	}
	defer holder.Close()

	cfg := config.Default()
	cfg.History.Backend = "bolt"
	cfg.History.File = dbPath

	repo, closeRepo := runHistory(cfg, newDiscardLogger())
	defer func() { _ = closeRepo() }()

	if _, err := repo.Load(t.Context()); !errors.Is(err, application.ErrPersistence) {
		t.Fatalf("expected ErrPersistence from Load, got %v", err)
	}
	if err := repo.Save(t.Context(), history.Snapshot{}); !errors.Is(err, application.ErrPersistence) {
		t.Fatalf("expected ErrPersistence from Save, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	playlist := filepath.Join(dir, "local.m3u")
	content := "#EXTM3U\n#EXTINF:-1,Live\n" + server.URL + "/live\n"
	if err := os.WriteFile(playlist, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write playlist: %v", err)
	}

	validator := application.NewValidationService(
		driven.NewHTTPProber(time.Second, ""),
		newDiscardLogger(),
		application.ValidationConfig{Workers: 2},
	)
	svc := application.NewPipelineService(application.PipelineDeps{
		Files:     driven.NewFileSource(),
		Validator: validator,
		Writer:    driven.NewPlaylistFileWriter(),
		History:   repo,
	}, application.PipelineConfig{
		Sources: []application.Source{{Name: "local", Kind: application.SourceFile, Location: playlist, Target: playlist}},
	}, newDiscardLogger())

	rep, err := svc.Run(t.Context())
	if err != nil {
		t.Fatalf("expected run to continue without history, got %v", err)
	}
	if rep.Total() != 1 {
		t.Errorf("expected 1 live channel, got %d", rep.Total())
	}
}
