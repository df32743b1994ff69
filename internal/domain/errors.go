package domain

import (
	"errors"
	"fmt"
)

var (
	// Document errors
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentNotRunnable = errors.New("document is not in a runnable status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidStatus       = errors.New("invalid document status")
	ErrEmptyFailureMessage = errors.New("failure message must not be empty")
	ErrResultNotReady      = errors.New("result not ready")

	// Transaction errors
	ErrInvalidAmount = errors.New("invalid amount")
)

// Stage is one step of the processing pipeline.
type Stage string

const (
	StageClassify    Stage = "classify"
	StageTextExtract Stage = "text_extract"
	StageParse       Stage = "parse"
	StageNormalize   Stage = "normalize"
	StageValidate    Stage = "validate"
	StagePersist     Stage = "persist"
)

// FailureKind classifies what went wrong inside a stage.
type FailureKind string

const (
	FailureExtraction         FailureKind = "extraction"
	FailureUnrecognizedSource FailureKind = "unrecognized_source"
	FailureParsingDegradation FailureKind = "parsing_degradation"
	FailureValidation         FailureKind = "validation"
	FailureUnhandled          FailureKind = "unhandled"
)

// Fatal reports whether a failure of this kind ends the run.
func (k FailureKind) Fatal() bool {
	return k == FailureValidation || k == FailureUnhandled
}

// StageError is a failure raised by a pipeline stage.
type StageError struct {
	Err   error
	Stage Stage
	Kind  FailureKind
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Message is the text stored on a failed document.
func (e *StageError) Message() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// NewStageError wraps err as a failure of kind in stage.
func NewStageError(stage Stage, kind FailureKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
