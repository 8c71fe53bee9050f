package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/elnormous/contenttype"

	"github.com/alorle/iptv-checker/internal/entry"
	"github.com/alorle/iptv-checker/internal/metrics"
	"github.com/alorle/iptv-checker/internal/port/driven"
	"github.com/alorle/iptv-checker/internal/probe"
)

// ValidationMode selects how strictly a fallback probe response is judged.
type ValidationMode string

const (
	// ModeFast accepts any status below 400
	ModeFast ValidationMode = "fast"
	// ModeStrict also requires a media or playlist content type
	ModeStrict ValidationMode = "strict"
)

const defaultWorkers = 30

// DefaultMediaTypes are the content types accepted in strict mode.
var DefaultMediaTypes = []string{
	"video/*",
	"audio/*",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/mpegurl",
	"audio/mpegurl",
	"application/dash+xml",
	"application/octet-stream",
}

// ValidationConfig configures a ValidationService.
type ValidationConfig struct {
	Mode       ValidationMode
	Workers    int
	Timeout    time.Duration
	MediaTypes []string
}

// DefaultTimeout returns the per-probe timeout of a mode.
func (m ValidationMode) DefaultTimeout() time.Duration {
	if m == ModeStrict {
		return 10 * time.Second
	}
	return 3 * time.Second
}

// ValidationService decides which entries point at live streams.
// It probes every distinct URL at most once per cache, fanning the work out
// to a fixed pool of workers.
type ValidationService struct {
	prober     driven.Prober
	logger     *slog.Logger
	mode       ValidationMode
	workers    int
	timeout    time.Duration
	mediaTypes []contenttype.MediaType
}

// NewValidationService creates a new ValidationService.
func NewValidationService(prober driven.Prober, logger *slog.Logger, cfg ValidationConfig) *ValidationService {
	if cfg.Mode == "" {
		cfg.Mode = ModeFast
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Mode.DefaultTimeout()
	}
	if len(cfg.MediaTypes) == 0 {
		cfg.MediaTypes = DefaultMediaTypes
	}

	mediaTypes := make([]contenttype.MediaType, 0, len(cfg.MediaTypes))
	for _, mt := range cfg.MediaTypes {
		parsed := contenttype.NewMediaType(mt)
		if parsed.Type == "" {
			logger.Warn("ignoring invalid media type", "media_type", mt)
			continue
		}
		mediaTypes = append(mediaTypes, parsed)
	}

	return &ValidationService{
		prober:     prober,
		logger:     logger,
		mode:       cfg.Mode,
		workers:    cfg.Workers,
		timeout:    cfg.Timeout,
		mediaTypes: mediaTypes,
	}
}

// Validate returns a copy of entries with their live state set, in input
// order. Entries sharing a URL get the same outcome. If ctx is cancelled,
// URLs not yet probed are reported dead.
func (s *ValidationService) Validate(ctx context.Context, cache *probe.Cache, entries []entry.Entry) []entry.Entry {
	if len(entries) == 0 {
		return []entry.Entry{}
	}

	urls := distinctURLs(entries)
	workers := min(s.workers, len(urls))

	var (
		mu     sync.Mutex
		states = make(map[string]entry.State, len(urls))
		wg     sync.WaitGroup
	)

	jobs := make(chan string)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				result, shared := cache.Resolve(ctx, url, s.probeURL)
				metrics.RecordCacheLookup(shared)

				mu.Lock()
				states[url] = result.State()
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, url := range urls {
		select {
		case jobs <- url:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]entry.Entry, len(entries))
	live := 0
	for i, e := range entries {
		state, ok := states[e.URL()]
		if !ok {
			state = entry.StateDead
		}
		if state == entry.StateLive {
			live++
		}
		out[i] = e.WithState(state)
	}

	s.logger.Debug("validation completed",
		"entries", len(entries),
		"distinct_urls", len(urls),
		"live", live,
	)
	return out
}

// probeURL runs the existence probe and, if inconclusive, the partial
// content probe. Every failure cause collapses to a dead result.
func (s *ValidationService) probeURL(ctx context.Context, url string) probe.Result {
	start := time.Now()

	headCtx, cancel := context.WithTimeout(ctx, s.timeout)
	resp, err := s.prober.Head(headCtx, url)
	cancel()

	if err == nil && resp.StatusCode < 400 {
		metrics.RecordProbe(string(probe.StepHead), "live")
		return s.newResult(url, true, probe.StepHead, resp, time.Since(start), "")
	}
	s.logInconclusive(url, probe.StepHead, resp, err)

	getCtx, cancel := context.WithTimeout(ctx, s.timeout)
	resp, err = s.prober.PartialGet(getCtx, url)
	cancel()

	if err != nil {
		s.logInconclusive(url, probe.StepPartial, resp, err)
		return s.newResult(url, false, probe.StepPartial, resp, time.Since(start), err.Error())
	}
	if resp.StatusCode >= 400 || !s.acceptsContentType(resp.ContentType) {
		s.logInconclusive(url, probe.StepPartial, resp, nil)
		return s.newResult(url, false, probe.StepPartial, resp, time.Since(start), "")
	}

	metrics.RecordProbe(string(probe.StepPartial), "live")
	return s.newResult(url, true, probe.StepPartial, resp, time.Since(start), "")
}

func (s *ValidationService) newResult(
	url string,
	live bool,
	step probe.Step,
	resp driven.ProbeResponse,
	latency time.Duration,
	errMsg string,
) probe.Result {
	result, err := probe.NewResult(url, time.Now(), live, step, resp.StatusCode, resp.ContentType, latency, errMsg)
	if err != nil {
		return probe.DeadResult(url, err.Error())
	}
	return result
}

func (s *ValidationService) logInconclusive(url string, step probe.Step, resp driven.ProbeResponse, err error) {
	outcome := "dead"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordProbe(string(step), outcome)

	s.logger.Debug("probe inconclusive",
		"url", url,
		"step", step,
		"status", resp.StatusCode,
		"content_type", resp.ContentType,
		"error", err,
	)
}

// acceptsContentType always holds in fast mode. In strict mode the declared
// type must match one of the configured media types, where a "*" subtype
// matches any subtype.
func (s *ValidationService) acceptsContentType(header string) bool {
	if s.mode != ModeStrict {
		return true
	}

	got := contenttype.NewMediaType(header)
	if got.Type == "" {
		return false
	}
	for _, allowed := range s.mediaTypes {
		if !strings.EqualFold(allowed.Type, got.Type) {
			continue
		}
		if allowed.Subtype == "*" || strings.EqualFold(allowed.Subtype, got.Subtype) {
			return true
		}
	}
	return false
}

func distinctURLs(entries []entry.Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.URL()]; ok {
			continue
		}
		seen[e.URL()] = struct{}{}
		urls = append(urls, e.URL())
	}
	return urls
}
