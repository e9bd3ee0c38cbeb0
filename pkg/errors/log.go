package errors

import (
	"log"
)

// LogHandler writes reports through a standard logger.
type LogHandler struct {
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Verbose adds stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *log.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return log.Default()
}

func (h *LogHandler) stack(trace string) {
	if h.Verbose && trace != "" {
		h.logger().Printf("litho: stack:\n%s", trace)
	}
}

func (h *LogHandler) HandleError(err *LithoError) {
	if err == nil {
		return
	}
	h.logger().Printf("litho: %v", err)
	h.stack(err.StackTrace)
}

func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	h.logger().Printf("litho: recovered %v", err)
	h.stack(err.StackTrace)
}

func (h *LogHandler) HandleCallbackError(err *CallbackError) {
	if err == nil {
		return
	}
	if err.Key != "" {
		h.logger().Printf("litho: %v (key %s)", err, err.Key)
	} else {
		h.logger().Printf("litho: %v", err)
	}
	h.stack(err.StackTrace)
}
