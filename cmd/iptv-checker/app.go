package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-checker/internal/adapter/driven"
	"github.com/alorle/iptv-checker/internal/application"
	"github.com/alorle/iptv-checker/internal/classifier"
	"github.com/alorle/iptv-checker/internal/config"
	"github.com/alorle/iptv-checker/internal/history"
	"github.com/alorle/iptv-checker/internal/logging"
	"github.com/alorle/iptv-checker/internal/metrics"
	port "github.com/alorle/iptv-checker/internal/port/driven"
	"github.com/alorle/iptv-checker/internal/report"
)

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Root().String("config"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.Root().String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openHistory returns the configured history repository and a function
// releasing its resources.
func openHistory(cfg *config.Config) (port.HistoryRepository, func() error, error) {
	if cfg.History.Backend != "bolt" {
		return driven.NewHistoryJSONRepository(cfg.History.File), func() error { return nil }, nil
	}

	if dir := filepath.Dir(cfg.History.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := bbolt.Open(cfg.History.File, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	repo, err := driven.NewHistoryBoltDBRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create history repository: %w", err)
	}
	return repo, db.Close, nil
}

// runHistory opens the history store for a pipeline run. A store that cannot
// be opened does not stop the run: its Load and Save report ErrPersistence,
// so sources are still validated, written and reported.
func runHistory(cfg *config.Config, logger *slog.Logger) (port.HistoryRepository, func() error) {
	repo, closeRepo, err := openHistory(cfg)
	if err != nil {
		logger.Error("history unavailable, continuing without it",
			"backend", cfg.History.Backend,
			"file", cfg.History.File,
			"error", err,
		)
		return unavailableHistory{err: err}, func() error { return nil }
	}
	return repo, closeRepo
}

type unavailableHistory struct {
	err error
}

func (h unavailableHistory) Load(ctx context.Context) (history.Snapshot, error) {
	return nil, fmt.Errorf("%w: %w", application.ErrPersistence, h.err)
}

func (h unavailableHistory) Save(ctx context.Context, snapshot history.Snapshot) error {
	return fmt.Errorf("%w: %w", application.ErrPersistence, h.err)
}

// pipelineSources converts configured sources into pipeline jobs and builds
// one discoverer per discovery source.
func pipelineSources(cfg *config.Config) ([]application.Source, map[string]port.Discoverer) {
	sources := make([]application.Source, 0, len(cfg.Sources))
	discoverers := make(map[string]port.Discoverer)

	for _, src := range cfg.Sources {
		sources = append(sources, application.Source{
			Name:     src.Name,
			Kind:     application.SourceKind(src.Kind),
			Location: src.Location(),
			Target:   src.Target,
			Classify: src.Classify,
		})
		if src.Kind == config.KindDiscover {
			discoverers[src.Name] = driven.NewHTMLDiscoverer(driven.DiscoverOptions{
				Selector: src.Selector,
				URLAttrs: src.URLAttrs,
				NameAttr: src.NameAttr,
			}, cfg.Validator.UserAgent)
		}
	}
	return sources, discoverers
}

func notifiers(cfg *config.Config, logger *slog.Logger) []port.Notifier {
	var out []port.Notifier
	if cfg.Report.File != "" {
		out = append(out, driven.NewReportFileNotifier(cfg.Report.File))
	}
	if cfg.TelegramEnabled() {
		out = append(out, driven.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	} else {
		logger.Info("telegram not configured, skipping chat notifications")
	}
	return out
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, closeRepo := runHistory(cfg, logger)
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Error("error closing history", "error", err)
		}
	}()

	mode := application.ValidationMode(cfg.Validator.Mode)
	prober := driven.NewHTTPProber(timeoutFor(cfg, mode), cfg.Validator.UserAgent)
	validator := application.NewValidationService(prober, logger, application.ValidationConfig{
		Mode:       mode,
		Workers:    cfg.Validator.Workers,
		Timeout:    cfg.Validator.Timeout,
		MediaTypes: cfg.Validator.MediaTypes,
	})

	sources, discoverers := pipelineSources(cfg)
	render := report.RenderOptions{
		MaxSources: cfg.Report.MaxSources,
		MaxAdded:   cfg.Report.MaxAdded,
		MaxRemoved: cfg.Report.MaxRemoved,
	}
	svc := application.NewPipelineService(application.PipelineDeps{
		Files:       driven.NewFileSource(),
		Remote:      driven.NewHTTPSource(cfg.Fetch.Timeout, cfg.Validator.UserAgent),
		Discoverers: discoverers,
		Classifier:  classifier.New(cfg.Classifier),
		Validator:   validator,
		Writer:      driven.NewPlaylistFileWriter(),
		History:     repo,
		Notifiers:   notifiers(cfg, logger),
	}, application.PipelineConfig{
		Sources:      sources,
		HistoryMode:  application.HistoryMode(cfg.History.Mode),
		StampUpdated: cfg.Playlist.StampUpdated,
		DryRun:       cmd.Bool("dry-run"),
		Render:       render,
	}, logger)

	rep, err := svc.Run(ctx)

	if cfg.Metrics.Textfile != "" {
		if mErr := metrics.WriteTextfile(cfg.Metrics.Textfile); mErr != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", mErr)
		}
	}
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		fmt.Fprintln(cmd.Root().Writer, report.PlainText(report.Render(*rep, render)))
	}
	return nil
}

// timeoutFor bounds the HTTP client a little above the per-probe timeout so
// the context deadline fires first.
func timeoutFor(cfg *config.Config, mode application.ValidationMode) time.Duration {
	timeout := cfg.Validator.Timeout
	if timeout <= 0 {
		timeout = mode.DefaultTimeout()
	}
	return timeout + time.Second
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeRepo() }()

	snap, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	return printSnapshot(cmd.Root().Writer, snap)
}

func printSnapshot(w io.Writer, snap history.Snapshot) error {
	for _, source := range snap.Sources() {
		rec := snap[source]
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", source, rec.Count(), rec.Kind()); err != nil {
			return err
		}
	}
	return nil
}

func configAction(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Print()
	return nil
}
