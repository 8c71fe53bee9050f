package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alorle/iptv-checker/internal/classifier"
	"github.com/alorle/iptv-checker/internal/entry"
	"github.com/alorle/iptv-checker/internal/history"
	"github.com/alorle/iptv-checker/internal/m3u"
	"github.com/alorle/iptv-checker/internal/metrics"
	"github.com/alorle/iptv-checker/internal/port/driven"
	"github.com/alorle/iptv-checker/internal/probe"
	"github.com/alorle/iptv-checker/internal/report"
)

// SourceKind tells where a source's playlist comes from.
type SourceKind string

const (
	SourceFile     SourceKind = "file"
	SourceURL      SourceKind = "url"
	SourceDiscover SourceKind = "discover"
)

// HistoryMode selects what is recorded per source.
type HistoryMode string

const (
	HistoryCount HistoryMode = "count"
	HistoryNames HistoryMode = "names"
)

// Source is one playlist job: where to read it and where to write the
// filtered result. Name is also the history key.
type Source struct {
	Name     string
	Kind     SourceKind
	Location string
	Target   string
	Classify bool
}

// PipelineConfig configures a PipelineService.
type PipelineConfig struct {
	Sources      []Source
	HistoryMode  HistoryMode
	StampUpdated bool
	DryRun       bool
	Render       report.RenderOptions
}

// PipelineDeps are the collaborators of a PipelineService. Discoverers are
// keyed by source name. Classifier may be nil when no source is classified.
type PipelineDeps struct {
	Files       driven.SourceFetcher
	Remote      driven.SourceFetcher
	Discoverers map[string]driven.Discoverer
	Classifier  *classifier.Policy
	Validator   *ValidationService
	Writer      driven.PlaylistWriter
	History     driven.HistoryRepository
	Notifiers   []driven.Notifier
}

// PipelineService drives every configured source through fetch, parse,
// classify, validate, write and diff, then records history and sends the
// aggregated change report.
type PipelineService struct {
	deps   PipelineDeps
	cfg    PipelineConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewPipelineService creates a new PipelineService.
func NewPipelineService(deps PipelineDeps, cfg PipelineConfig, logger *slog.Logger) *PipelineService {
	if cfg.HistoryMode == "" {
		cfg.HistoryMode = HistoryCount
	}
	if cfg.Render == (report.RenderOptions{}) {
		cfg.Render = report.DefaultRenderOptions()
	}
	return &PipelineService{
		deps:   deps,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Run processes all sources sequentially. Source failures are reported in
// the returned report and never abort siblings; only a missing source list
// or a cancelled context fail the run.
func (s *PipelineService) Run(ctx context.Context) (*report.ChangeReport, error) {
	if len(s.cfg.Sources) == 0 {
		return nil, ErrNoSources
	}

	start := s.now()
	logger := s.logger.With("run_id", uuid.NewString())
	logger.Info("starting run", "sources", len(s.cfg.Sources), "dry_run", s.cfg.DryRun)

	previous, err := s.deps.History.Load(ctx)
	if err != nil {
		logger.Warn("failed to load history, starting empty",
			"error", stageError(StageHistory, "", ErrPersistence, err),
		)
		previous = history.Snapshot{}
	}

	cache := probe.NewCache()
	next := previous.Clone()
	results := make([]report.SourceResult, 0, len(s.cfg.Sources))

	for _, src := range s.cfg.Sources {
		if err := ctx.Err(); err != nil {
			logger.Info("run interrupted", "processed", len(results))
			return nil, err
		}

		srcLogger := logger.With("source", src.Name)
		record, err := s.runSource(ctx, srcLogger, cache, src)
		if err != nil {
			var stageErr *StageError
			if errors.As(err, &stageErr) {
				metrics.RecordSourceFailure(src.Name, string(stageErr.Stage))
			}
			srcLogger.Warn("source stage failed", "error", err)

			if errors.Is(err, ErrSourceUnavailable) {
				// Previous history is kept for unavailable sources
				results = append(results, report.SourceResult{
					Source: src.Name,
					Record: history.Count(0),
					Failed: true,
				})
				continue
			}
		}

		next[src.Name] = record
		results = append(results, report.SourceResult{Source: src.Name, Record: record})
	}

	lookups, probes := cache.Stats()
	end := s.now()
	rep := report.Build(previous, results, end)

	logger.Info("sources processed",
		"total_channels", rep.Total(),
		"distinct_urls", cache.Len(),
		"cache_lookups", lookups,
		"probes", probes,
	)

	if s.cfg.DryRun {
		logger.Info("dry run, skipping history and notifications")
	} else {
		if err := s.deps.History.Save(ctx, next); err != nil {
			logger.Error("failed to save history",
				"error", stageError(StageHistory, "", ErrPersistence, err),
			)
		}
		s.notify(ctx, logger, rep)
	}

	metrics.ObserveRun(start, s.now())
	logger.Info("run completed", "duration", s.now().Sub(start))
	return &rep, nil
}

// runSource returns the history record for src. A fetch failure returns a
// StageError wrapping ErrSourceUnavailable and no usable record; a write
// failure returns ErrPersistence alongside a valid record.
func (s *PipelineService) runSource(ctx context.Context, logger *slog.Logger, cache *probe.Cache, src Source) (history.Record, error) {
	entries, err := s.fetch(ctx, src)
	if err != nil {
		return history.Record{}, stageError(StageFetch, src.Name, ErrSourceUnavailable, err)
	}
	metrics.SetSourceEntries(src.Name, "parsed", len(entries))

	if src.Classify && s.deps.Classifier != nil {
		kept, dropped := s.deps.Classifier.Filter(entries)
		logger.Debug("classified entries", "kept", len(kept), "dropped", dropped)
		entries = kept
		metrics.SetSourceEntries(src.Name, "classified", len(entries))
	}

	validated := s.deps.Validator.Validate(ctx, cache, entries)
	live := make([]entry.Entry, 0, len(validated))
	for _, e := range validated {
		if e.IsLive() {
			live = append(live, e)
		}
	}
	metrics.SetSourceEntries(src.Name, "live", len(live))
	logger.Info("source validated", "entries", len(entries), "live", len(live))

	record := s.record(live)

	switch {
	case s.cfg.DryRun:
		logger.Debug("dry run, not writing playlist", "target", src.Target)
	case len(live) == 0:
		logger.Warn("no live entries, keeping existing playlist", "target", src.Target)
	default:
		var opts m3u.Options
		if s.cfg.StampUpdated {
			opts.UpdatedAt = s.now()
		}
		if err := s.deps.Writer.Write(ctx, src.Target, m3u.Assemble(validated, opts)); err != nil {
			return record, stageError(StageWrite, src.Name, ErrPersistence, err)
		}
		logger.Debug("playlist written", "target", src.Target)
	}

	return record, nil
}

func (s *PipelineService) fetch(ctx context.Context, src Source) ([]entry.Entry, error) {
	switch src.Kind {
	case SourceFile, "":
		data, err := s.deps.Files.Fetch(ctx, src.Location)
		if err != nil {
			return nil, err
		}
		return m3u.Parse(data, src.Name), nil
	case SourceURL:
		data, err := s.deps.Remote.Fetch(ctx, src.Location)
		if err != nil {
			return nil, err
		}
		return m3u.Parse(data, src.Name), nil
	case SourceDiscover:
		discoverer, ok := s.deps.Discoverers[src.Name]
		if !ok {
			return nil, errors.New("no discoverer configured")
		}
		found, err := discoverer.Discover(ctx, src.Location)
		if err != nil {
			return nil, err
		}
		return discoveredEntries(found, src.Name), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// discoveredEntries turns scraped links into entries with a synthesized
// directive line. Nameless links are called "Channel N".
func discoveredEntries(found []driven.Discovered, sourceFile string) []entry.Entry {
	entries := make([]entry.Entry, 0, len(found))
	for i, d := range found {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("Channel %d", i+1)
		}
		raw := m3u.Directive(name, &m3u.TVGTags{Name: name})
		e, err := entry.NewEntry(name, d.URL, raw, sourceFile)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func (s *PipelineService) record(live []entry.Entry) history.Record {
	if s.cfg.HistoryMode == HistoryNames {
		return history.NamedSet(entry.Names(live))
	}
	return history.Count(len(live))
}

func (s *PipelineService) notify(ctx context.Context, logger *slog.Logger, rep report.ChangeReport) {
	if len(s.deps.Notifiers) == 0 {
		return
	}

	text := report.Render(rep, s.cfg.Render)
	for _, n := range s.deps.Notifiers {
		err := n.Notify(ctx, text)
		metrics.RecordNotification(n.Name(), err)
		if err != nil {
			logger.Error("notification failed",
				"notifier", n.Name(),
				"error", stageError(StageNotify, "", ErrNotification, err),
			)
			continue
		}
		logger.Info("report delivered", "notifier", n.Name())
	}
}
