package probe

import (
	"strings"
	"time"

	"github.com/alorle/iptv-checker/internal/entry"
)

// Step identifies which probe of the sequence decided the outcome.
type Step string

const (
	StepNone    Step = "none"
	StepHead    Step = "head"
	StepPartial Step = "partial"
)

// Result is the outcome of one probe sequence for a URL.
// It is an immutable value object.
type Result struct {
	url          string
	timestamp    time.Time
	state        entry.State
	step         Step
	statusCode   int
	contentType  string
	latency      time.Duration
	errorMessage string
}

// NewResult creates a new probe result with validation.
// Any state other than Live is recorded as Dead.
func NewResult(
	url string,
	timestamp time.Time,
	live bool,
	step Step,
	statusCode int,
	contentType string,
	latency time.Duration,
	errorMessage string,
) (Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, ErrEmptyURL
	}
	if timestamp.IsZero() {
		return Result{}, ErrInvalidTimestamp
	}

	state := entry.StateDead
	if live {
		state = entry.StateLive
	}

	return Result{
		url:          url,
		timestamp:    timestamp,
		state:        state,
		step:         step,
		statusCode:   statusCode,
		contentType:  contentType,
		latency:      latency,
		errorMessage: errorMessage,
	}, nil
}

// DeadResult is the result for a URL whose probes never produced a usable
// response.
func DeadResult(url string, errorMessage string) Result {
	return Result{
		url:          url,
		timestamp:    time.Now(),
		state:        entry.StateDead,
		step:         StepNone,
		errorMessage: errorMessage,
	}
}

func (r Result) URL() string            { return r.url }
func (r Result) Timestamp() time.Time   { return r.timestamp }
func (r Result) State() entry.State     { return r.state }
func (r Result) Live() bool             { return r.state == entry.StateLive }
func (r Result) Step() Step             { return r.step }
func (r Result) StatusCode() int        { return r.statusCode }
func (r Result) ContentType() string    { return r.contentType }
func (r Result) Latency() time.Duration { return r.latency }
func (r Result) ErrorMessage() string   { return r.errorMessage }
