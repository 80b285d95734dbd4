package engine

import (
	"errors"
	"fmt"
)

// Stage names the parse step a PipelineError came from.
type Stage string

const (
	StageFiles      Stage = "files"
	StageTransform  Stage = "transform"
	StageComponents Stage = "components"
)

// PipelineError wraps a failure raised by a plugin or the transformer during
// a parse.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("engine: %s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

var (
	// ErrNilContext is returned by Parse and Watch when ctx is nil.
	ErrNilContext = errors.New("engine: context is required")
	// ErrParseInProgress is returned when Parse is called with the context of
	// a parse that is still running on the same engine.
	ErrParseInProgress = errors.New("engine: parse already in progress")
)
