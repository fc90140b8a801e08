package domain

import (
	"context"
	"errors"
	"fmt"
)

// Phase is where a workflow currently stands, reported to the client.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseUploading  Phase = "uploading"
	PhasePersisting Phase = "persisting"
	PhaseRefreshing Phase = "refreshing"
	PhaseFailed     Phase = "failed"
	PhaseLoading    Phase = "loading"
)

type FailureKind string

const (
	KindValidationFailed  FailureKind = "ValidationFailed"
	KindUploadFailed      FailureKind = "UploadFailed"
	KindPersistenceFailed FailureKind = "PersistenceFailed"
	KindRefreshFailed     FailureKind = "RefreshFailed"
	KindGenerationFailed  FailureKind = "GenerationFailed"
)

// WorkflowError is the typed failure of a submission or generation stage.
// errors.Is matches on Kind, so callers compare against the sentinels below.
type WorkflowError struct {
	Kind   FailureKind
	Fields ErrorMap
	Err    error
}

func (e *WorkflowError) Error() string {
	if e.Err == nil {
		if len(e.Fields) > 0 {
			return fmt.Sprintf("%s: %d invalid field(s)", e.Kind, len(e.Fields))
		}
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	t, ok := target.(*WorkflowError)
	return ok && t.Kind == e.Kind
}

// Cause is the human-readable reason, safe to show next to the form.
func (e *WorkflowError) Cause() string {
	switch {
	case errors.Is(e.Err, ErrTimeout):
		return "the request timed out"
	case e.Err != nil:
		return e.Err.Error()
	case len(e.Fields) > 0:
		return "some fields are invalid"
	}
	return string(e.Kind)
}

var (
	ErrValidationFailed  = &WorkflowError{Kind: KindValidationFailed}
	ErrUploadFailed      = &WorkflowError{Kind: KindUploadFailed}
	ErrPersistenceFailed = &WorkflowError{Kind: KindPersistenceFailed}
	ErrRefreshFailed     = &WorkflowError{Kind: KindRefreshFailed}
	ErrGenerationFailed  = &WorkflowError{Kind: KindGenerationFailed}

	// ErrTimeout marks a network call that hit its deadline.
	ErrTimeout = errors.New("deadline exceeded")

	ErrMissingRequired      = errors.New("required fields are missing")
	ErrSubmissionInProgress = errors.New("a submission is already in progress for this form")
	ErrFormClosed           = errors.New("signup form is not open")
)

// MissingFieldsError lists the blank required fields of a rejected submit.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("required fields are missing: %v", e.Fields)
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingRequired
}

// MarkTimeout tags err with ErrTimeout when it was caused by a context deadline.
func MarkTimeout(err error) error {
	if err == nil || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func ValidationFailed(fields ErrorMap) error {
	return &WorkflowError{Kind: KindValidationFailed, Fields: fields}
}

func UploadFailed(cause error) error {
	return &WorkflowError{Kind: KindUploadFailed, Err: cause}
}

func PersistenceFailed(cause error) error {
	return &WorkflowError{Kind: KindPersistenceFailed, Err: cause}
}

func RefreshFailed(cause error) error {
	return &WorkflowError{Kind: KindRefreshFailed, Err: cause}
}

func GenerationFailed(cause error) error {
	return &WorkflowError{Kind: KindGenerationFailed, Err: cause}
}

// Failure is the absorbing Failed(stage, reason) state of a workflow.
type Failure struct {
	Stage  Phase       `json:"stage"`
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
	Fields ErrorMap    `json:"fields,omitempty"`
}
