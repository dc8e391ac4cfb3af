// Package trace adapts the engine's line-oriented debug stream to any
// output destination. The engine package depends only on the small Sink
// interface defined here; it never formats or writes text itself.
package trace

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Sink receives one already-formatted trace line per call. Implementations
// must not block the caller for long — trace lines are emitted inline with
// every traced engine operation.
type Sink interface {
	Emit(line string)
}

// Line renders a trace line in the engine's historical format:
// "At time <clock> -- <message>".
func Line(clock float64, message string) string {
	return fmt.Sprintf("At time %12.3f -- %s", clock, message)
}

// writerSink adapts an io.Writer into a Sink.
type writerSink struct {
	w io.Writer
}

// Writer returns a Sink that writes each line, newline-terminated, to w.
func Writer(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Emit(line string) {
	fmt.Fprintln(s.w, line)
}

// logrusSink adapts a *logrus.Logger into a Sink, logging each trace line at
// Debug level so trace output can be toggled with the same --log flag as
// the rest of the CLI.
type logrusSink struct {
	log *logrus.Logger
}

// Logrus returns a Sink that reports trace lines through log at Debug
// level.
func Logrus(log *logrus.Logger) Sink {
	return &logrusSink{log: log}
}

func (s *logrusSink) Emit(line string) {
	s.log.Debug(line)
}
