package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge lifecycle the error occurred
type Phase string

const (
	PhaseAttach   Phase = "attach"   // attach hook
	PhaseDetach   Phase = "detach"   // detach hook
	PhaseResolve  Phase = "resolve"  // symbol resolution
	PhaseRelease  Phase = "release"  // symbol release
	PhaseContext  Phase = "context"  // per-thread context derivation
	PhaseManifest Phase = "manifest" // symbol manifest loading
	PhaseParse    Phase = "parse"    // descriptor parsing
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseHost     Phase = "host"     // host runtime operations
)

// Kind categorizes the error
type Kind string

const (
	KindNotAttached        Kind = "not_attached"
	KindAlreadyAttached    Kind = "already_attached"
	KindContextUnavailable Kind = "context_unavailable"
	KindClassNotFound      Kind = "class_not_found"
	KindMethodNotFound     Kind = "method_not_found"
	KindAlreadyInitialized Kind = "already_initialized"
	KindRelease            Kind = "release"
	KindInvalidDescriptor  Kind = "invalid_descriptor"
	KindInvalidManifest    Kind = "invalid_manifest"
	KindDuplicate          Kind = "duplicate"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindUnsupported        Kind = "unsupported"
	KindWrongThread        Kind = "wrong_thread"
	KindHook               Kind = "hook"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	Class      string
	MemberName string
	Descriptor string
	Detail     string
	Path       []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	hasSymbol := e.Class != "" || e.MemberName != ""
	if hasSymbol {
		b.WriteString(": ")
		b.WriteString(e.symbol())
	}

	if e.Detail != "" {
		if hasSymbol {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// symbol renders class, member and descriptor as "java/lang/Object.wait(JI)V".
func (e *Error) symbol() string {
	var b strings.Builder
	if e.Class != "" {
		b.WriteString("class ")
		b.WriteString(e.Class)
	}
	if e.MemberName != "" {
		if e.Class != "" {
			b.WriteByte('.')
		} else {
			b.WriteString("member ")
		}
		b.WriteString(e.MemberName)
		b.WriteString(e.Descriptor)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
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

// Path sets the slot path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Class sets the host class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Member sets the member name and its descriptor
func (b *Builder) Member(name, descriptor string) *Builder {
	b.err.MemberName = name
	b.err.Descriptor = descriptor
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

// NotAttached creates an error for an operation that needs a live host connection
func NotAttached(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotAttached,
		Detail: fmt.Sprintf("%s: bridge not attached", what),
	}
}

// AlreadyAttached creates an error for a second attach without a detach
func AlreadyAttached() *Error {
	return &Error{
		Phase:  PhaseAttach,
		Kind:   KindAlreadyAttached,
		Detail: "attach hook invoked twice without detach",
	}
}

// ContextUnavailable creates an error for a denied context derivation
func ContextUnavailable(version int32, status fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseContext,
		Kind:   KindContextUnavailable,
		Detail: fmt.Sprintf("host denied context for version %#x: %s", version, status),
		Value:  version,
	}
}

// ClassNotFound creates a class resolution failure
func ClassNotFound(path []string, class string, cause error) *Error {
	return &Error{
		Phase: PhaseResolve,
		Kind:  KindClassNotFound,
		Path:  path,
		Class: class,
		Cause: cause,
	}
}

// MethodNotFound creates a method or constructor resolution failure
func MethodNotFound(path []string, class, name, descriptor string, cause error) *Error {
	return &Error{
		Phase:      PhaseResolve,
		Kind:       KindMethodNotFound,
		Path:       path,
		Class:      class,
		MemberName: name,
		Descriptor: descriptor,
		Cause:      cause,
	}
}

// AlreadyInitialized creates the rejection returned for a second initialize
func AlreadyInitialized(generation uint64) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindAlreadyInitialized,
		Detail: fmt.Sprintf("symbol generation %d is still live; clean before re-initializing", generation),
		Value:  generation,
	}
}

// Release wraps a failure to release a held reference
func Release(path []string, cause error) *Error {
	return &Error{
		Phase: PhaseRelease,
		Kind:  KindRelease,
		Path:  path,
		Cause: cause,
	}
}

// InvalidDescriptor creates a descriptor parse error
func InvalidDescriptor(descriptor string, offset int, detail string) *Error {
	return &Error{
		Phase:      PhaseParse,
		Kind:       KindInvalidDescriptor,
		Descriptor: descriptor,
		Detail:     fmt.Sprintf("offset %d: %s", offset, detail),
		Value:      offset,
	}
}

// InvalidManifest creates a manifest validation error
func InvalidManifest(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseManifest,
		Kind:   KindInvalidManifest,
		Path:   path,
		Detail: detail,
	}
}

// Duplicate creates a duplicate-entry error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
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

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// WrongThread creates an error for a context used off its owning thread
func WrongThread(owner, caller int) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindWrongThread,
		Detail: fmt.Sprintf("context owned by thread %d used from thread %d", owner, caller),
		Value:  caller,
	}
}

// Hook wraps a failing feature hook
func Hook(phase Phase, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHook,
		Detail: fmt.Sprintf("hook %q", name),
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

// ParseFailed creates a file parsing error
func ParseFailed(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
