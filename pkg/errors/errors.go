// Package errors provides structured error handling for the Litho runtime.
//
// Three families of failures exist. Invariant violations (double mount,
// ref-count underflow, mutation of a frozen node) panic with an
// *InvariantError and are never recovered by the framework. Component
// callback failures are wrapped in a *CallbackError and routed to the nearest
// error boundary, or re-panicked when there is none. Configuration and
// precondition failures panic with a *ConfigError at setup time.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvariant indicates a violated mount or reconcile protocol.
	KindInvariant
	// KindCallback indicates a failure inside a component callback.
	KindCallback
	// KindConfig indicates an invalid configuration or precondition.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindLayout indicates a failed or abandoned layout computation.
	KindLayout
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvariant:
		return "invariant"
	case KindCallback:
		return "callback"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	case KindLayout:
		return "layout"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by invariant and config failures.
var (
	ErrDoubleMount         = stderrors.New("litho: render unit is already mounted")
	ErrNotMounted          = stderrors.New("litho: render unit is not mounted")
	ErrUnownedRef          = stderrors.New("litho: trying to decrement reference count for an item you don't own")
	ErrFrozenNode          = stderrors.New("litho: internal node is frozen")
	ErrReleasedTree        = stderrors.New("litho: component tree has been released")
	ErrReentrantMount      = stderrors.New("litho: mount called while already mounting")
	ErrDuplicateRenderUnit = stderrors.New("litho: duplicate render unit id")
	ErrExtensionsDisabled  = stderrors.New("litho: mount extensions are disabled for this host")
	ErrPoolExists          = stderrors.New("litho: mount content pool already exists for context")
	ErrDynamicPropType     = stderrors.New("litho: dynamic value has the wrong type for its prop")
)

// LithoError represents a structured error reported by the runtime.
type LithoError struct {
	// Op is the operation that failed (e.g., "litho.ComponentTree.commit").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Key is the global component key, if applicable.
	Key string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LithoError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s [%s] key=%s: %v", e.Op, e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *LithoError) Unwrap() error {
	return e.Err
}

// InvariantError is the panic value used when the mount or reconcile
// protocol is violated by the caller.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// ConfigError is the panic value used for setup-time precondition failures.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "litho.calculateLayout").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// CallbackError represents a failure inside a component lifecycle callback.
type CallbackError struct {
	// Component is the type name of the component that failed.
	Component string
	// Callback is the lifecycle method (Render, Mount, Bind, ...).
	Callback string
	// Key is the global key of the failing component.
	Key string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CallbackError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.%s(): %v", e.Component, e.Callback, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.%s(): %v", e.Component, e.Callback, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.%s()", e.Component, e.Callback)
}

func (e *CallbackError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *LithoError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleCallbackError is called when a callback failure is routed to
	// an error boundary.
	HandleCallbackError(err *CallbackError)
}

// Invariant panics with an *InvariantError wrapping err.
func Invariant(op string, err error) {
	panic(&InvariantError{Op: op, Err: err})
}

// Invariantf panics with an *InvariantError wrapping sentinel with extra
// formatted detail.
func Invariantf(op string, sentinel error, format string, args ...any) {
	panic(&InvariantError{Op: op, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)})
}

// ConfigPanic panics with a *ConfigError wrapping err.
func ConfigPanic(op string, err error) {
	panic(&ConfigError{Op: op, Err: err})
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}
