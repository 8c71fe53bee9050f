package application

import (
	"errors"
	"fmt"
)

var (
	ErrNoSources         = errors.New("no sources configured")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrPersistence       = errors.New("persistence failure")
	ErrNotification      = errors.New("notification failure")
)

// Stage names a step of the per-source pipeline.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageWrite   Stage = "write"
	StageHistory Stage = "history"
	StageNotify  Stage = "notify"
)

// StageError reports which stage failed, and for which source.
type StageError struct {
	Stage  Stage
	Source string
	Err    error
}

func (e *StageError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Source, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, source string, kind, err error) *StageError {
	return &StageError{
		Stage:  stage,
		Source: source,
		Err:    fmt.Errorf("%w: %w", kind, err),
	}
}
