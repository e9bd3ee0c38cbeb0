package errors

import (
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"
)

type handlerBox struct{ h ErrorHandler }

var (
	handler        atomic.Pointer[handlerBox]
	defaultHandler ErrorHandler = &LogHandler{}
)

// SetHandler replaces the process-wide handler. Nil restores the default
// LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		handler.Store(nil)
		return
	}
	handler.Store(&handlerBox{h: h})
}

// CurrentHandler returns the handler reports are sent to.
func CurrentHandler() ErrorHandler {
	if b := handler.Load(); b != nil {
		return b.h
	}
	return defaultHandler
}

// Report stamps err and sends it to the current handler.
func Report(err *LithoError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	CurrentHandler().HandleError(err)
}

// ReportLayout reports a layout of the tree at version that failed for a
// reason other than being superseded.
func ReportLayout(op string, version uint64, err error) {
	Report(&LithoError{Op: op, Kind: KindLayout, Key: "v" + strconv.FormatUint(version, 10), Err: err})
}

// ReportCallbackError stamps err and sends it to the current handler. It
// runs before the error reaches an error boundary.
func ReportCallbackError(err *CallbackError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	CurrentHandler().HandleCallbackError(err)
}

// Recover reports a panic of a background goroutine instead of crashing
// the process. Invariant and configuration panics are re-raised.
//
//	defer errors.Recover("litho.layout")
func Recover(op string) {
	r := recover()
	if r == nil {
		return
	}
	switch r.(type) {
	case *InvariantError, *ConfigError:
		panic(r)
	}
	CurrentHandler().HandlePanic(&PanicError{
		Op:         op,
		Value:      r,
		StackTrace: string(debug.Stack()),
		Timestamp:  time.Now(),
	})
}

// Stack returns the calling goroutine's stack.
func Stack() string {
	return string(debug.Stack())
}
