package monitor

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Kind classifies an auth failure. The set is closed: callers wrap
// their errors in a Failure at the point of failure, and the recorder
// reads the kind back with KindOf. Errors that were never classified
// land in KindUnknown; nothing here inspects error messages.
type Kind string

const (
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindProviderError      Kind = "ProviderError"
	KindSessionExpired     Kind = "SessionExpired"
	KindCallbackError      Kind = "CallbackError"
	KindStateMismatch      Kind = "StateMismatch"
	KindUnknown            Kind = "UnknownError"
)

// Failure wraps an error from an auth operation with its kind and the
// operation that produced it.
type Failure struct {
	Kind Kind
	Op   string
	Err  error

	// Stack is captured at construction so the error table records
	// where the failure originated, not where it was recorded.
	Stack string
}

// NewFailure classifies err as kind for operation op.
func NewFailure(kind Kind, op string, err error) *Failure {
	return &Failure{
		Kind:  kind,
		Op:    op,
		Err:   err,
		Stack: string(debug.Stack()),
	}
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	if f.Op == "" {
		return f.Err.Error()
	}
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the classification of err, or KindUnknown when err was
// never wrapped in a Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) && f.Kind != "" {
		return f.Kind
	}
	return KindUnknown
}

// StackOf returns the captured stack for err, or "" when there is none.
func StackOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Stack
	}
	return ""
}
