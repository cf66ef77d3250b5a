package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the lifecycle the error occurred
type Phase string

const (
	PhaseDispose  Phase = "dispose"  // explicit Dispose
	PhaseTeardown Phase = "teardown" // automatic teardown on reclamation
	PhaseGuard    Phase = "guard"    // guarded call on a disposed value
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseResource Phase = "resource" // handle table operations
	PhaseEngine   Phase = "engine"   // wasm runtime operations
	PhaseStore    Phase = "store"    // sqlite operations
)

// Kind categorizes the error
type Kind string

const (
	KindReleaseFailed Kind = "release_failed"
	KindPanic         Kind = "panic"
	KindDisposed      Kind = "disposed"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindTypeMismatch  Kind = "type_mismatch"
	KindLoad          Kind = "load"
	KindExec          Kind = "exec"
)

// ErrDisposed matches any error of KindDisposed, whatever its phase.
var ErrDisposed = &Error{Kind: KindDisposed}

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	ID     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(" in ")
		b.WriteString(e.Type)
		if e.ID != "" {
			b.WriteByte('(')
			b.WriteString(e.ID)
			b.WriteByte(')')
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// An empty Phase on the target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && e.Phase != t.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the Go type name of the owning value
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// ID sets the owning value's identifier
func (b *Builder) ID(id string) *Builder {
	b.err.ID = id
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ReleaseFailed wraps an error returned by one release level
func ReleaseFailed(phase Phase, typeName, id string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindReleaseFailed,
		Type:  typeName,
		ID:    id,
		Cause: cause,
	}
}

// Panic records a panic recovered from a release level
func Panic(phase Phase, typeName, id string, value any) *Error {
	e := &Error{
		Phase:  phase,
		Kind:   KindPanic,
		Type:   typeName,
		ID:     id,
		Value:  value,
		Detail: fmt.Sprintf("recovered: %v", value),
	}
	if err, ok := value.(error); ok {
		e.Cause = err
	}
	return e
}

// Disposed creates an error for an operation attempted on a disposed value
func Disposed(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDisposed,
		Type:   typeName,
		Detail: "value already disposed",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s not found", what),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Type:   got,
		Detail: fmt.Sprintf("expected %s", want),
	}
}

// Load wraps a failure to acquire a resource
func Load(phase Phase, msg string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLoad,
		Detail: msg,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
