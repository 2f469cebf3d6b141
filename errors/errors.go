package errors

import (
	"fmt"
	"strings"
	"time"
)

// Phase indicates which stage of module startup the error occurred in
type Phase string

const (
	PhaseLocate      Phase = "locate"      // reading module bytes
	PhaseCompile     Phase = "compile"     // header preflight and compilation
	PhaseInstantiate Phase = "instantiate" // imports, start function
	PhaseInitialize  Phase = "initialize"  // the bootstrap attempt as a whole
	PhaseConfig      Phase = "config"      // bootstrap configuration
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
	KindUnsupported      Kind = "unsupported"
	KindInstantiation    Kind = "instantiation"
	KindInitialization   Kind = "initialization"
	KindTimeout          Kind = "timeout"
	KindCanceled         Kind = "canceled"
	KindPanic            Kind = "panic"
	KindAlreadyAttempted Kind = "already_attempted"
)

// Error is the structured error type used throughout the bootstrap
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(" in ")
		b.WriteString(e.Module)
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
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
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

// Module sets the module name
func (b *Builder) Module(name string) *Builder {
	b.err.Module = name
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

// Sentinel targets for errors.Is. They match on Kind regardless of Phase.
var (
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrCanceled         = &Error{Kind: KindCanceled}
	ErrPanic            = &Error{Kind: KindPanic}
	ErrAlreadyAttempted = &Error{Kind: KindAlreadyAttempted}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

// Convenience constructors for common error patterns

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a locate error for a module that does not exist
func NotFound(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseLocate,
		Kind:   KindNotFound,
		Module: module,
		Detail: "module not found",
		Cause:  cause,
	}
}

// Locate creates a generic error for unreadable module bytes
func Locate(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseLocate,
		Kind:   KindInvalidInput,
		Module: module,
		Detail: "read module",
		Cause:  cause,
	}
}

// InvalidHeader creates a compile error for a malformed binary header
func InvalidHeader(detail string, args ...any) *Error {
	return New(PhaseCompile, KindInvalidData).Detail(detail, args...).Build()
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Compile creates a compilation error
func Compile(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindInvalidData,
		Module: module,
		Detail: "compile module",
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindInstantiation,
		Module: module,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// InitializationFailure wraps a failure produced by the binary module.
// Used when a failure policy escalates instead of absorbing.
func InitializationFailure(cause error) *Error {
	return &Error{
		Phase:  PhaseInitialize,
		Kind:   KindInitialization,
		Detail: "module initialization failed",
		Cause:  cause,
	}
}

// Timeout creates an error for an initialization that outlived its deadline
func Timeout(module string, after time.Duration) *Error {
	return &Error{
		Phase:  PhaseInitialize,
		Kind:   KindTimeout,
		Module: module,
		Detail: fmt.Sprintf("initialization did not settle within %s", after),
		Value:  after,
	}
}

// Canceled creates an error for an initialization abandoned by its caller
func Canceled(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseInitialize,
		Kind:   KindCanceled,
		Module: module,
		Detail: "initialization canceled",
		Cause:  cause,
	}
}

// Panicked creates an error for a panic raised during initialization
func Panicked(module string, value any) *Error {
	var cause error
	if err, ok := value.(error); ok {
		cause = err
	}
	return &Error{
		Phase:  PhaseInitialize,
		Kind:   KindPanic,
		Module: module,
		Detail: fmt.Sprintf("panic: %v", value),
		Value:  value,
		Cause:  cause,
	}
}

// AlreadyAttempted creates an error for a repeated bootstrap call
func AlreadyAttempted(module string) *Error {
	return &Error{
		Phase:  PhaseInitialize,
		Kind:   KindAlreadyAttempted,
		Module: module,
		Detail: "bootstrap already attempted",
	}
}

// InvalidConfig creates a configuration error
func InvalidConfig(key string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("invalid value for %q", key),
		Cause:  cause,
	}
}
