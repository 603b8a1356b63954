package errors

import "github.com/pkg/errors"

// StackTracer is satisfied by errors that carry a pkg/errors stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer pairs a message with an underlying error that is guaranteed to
// carry a stack trace, so the logger can emit where a pipeline failure
// originated.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates an ErrorTracer with a message and no cause yet.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{Message: message}
}

// TracerFromError wraps err, capturing a stack trace at the call site unless
// err already carries one.
func TracerFromError(err error) *ErrorTracer {
	return NewTracer(err.Error()).Wrap(err)
}

// Wrap attaches err as the cause, capturing a stack trace unless err already
// carries one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	e.Err = ensureStack(err)
	return e
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace returns the cause's stack trace, or nil when there is no traced
// cause.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if traced, ok := e.Err.(StackTracer); ok {
		return traced.StackTrace()
	}
	return nil
}

// ensureStack returns err unchanged when it already has a stack trace, and
// annotates it with one otherwise. Wrapping twice would report the wrap site
// instead of the failure site.
func ensureStack(err error) error {
	if _, ok := err.(StackTracer); ok {
		return err
	}
	return errors.WithStack(err)
}
