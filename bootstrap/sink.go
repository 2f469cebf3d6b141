package bootstrap

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Sink receives initialization failures for human-readable reporting.
// It is write-only; the bootstrap never reads from it.
type Sink interface {
	Report(err error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(err error)

// Report calls f(err).
func (f SinkFunc) Report(err error) {
	f(err)
}

type zapSink struct {
	logger *zap.Logger
}

// NewZapSink returns a Sink that logs each failure at error level with the
// failure attached under the "error" field.
func NewZapSink(l *zap.Logger) Sink {
	return &zapSink{logger: l}
}

func (s *zapSink) Report(err error) {
	s.logger.Error("module initialization failed", zap.Error(err))
}

type writerSink struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterSink returns a Sink that writes err.Error() and a newline to w.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Report(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.w, err)
}

// Stderr is the default sink. It writes to the process's standard error.
var Stderr Sink = NewWriterSink(os.Stderr)

// Discard drops every report.
var Discard Sink = SinkFunc(func(error) {})
