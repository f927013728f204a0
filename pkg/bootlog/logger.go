// Package bootlog provides the logging facade used across the boot manager
// core. It wraps logrus, the teacher's direct logging dependency, with a
// small interface so callers never import logrus directly.
package bootlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface every package in this module depends on.
type Logger struct {
	*logrus.Logger
	name string
}

// New builds a Logger tagged with name, defaulting to info level.
// Pass debug=true to enable debug-level output, mirroring the
// --debug flag threaded through the teacher's CLI commands.
func New(name string, debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{Logger: l, name: name}
}

// NewBuffered is used by tests that want to assert on emitted log lines
// without touching stderr, matching the teacher's sdkTypes.NewBufferLogger
// pattern used throughout pkg/uki's test suite.
func NewBuffered(w io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	return &Logger{Logger: l, name: "test"}
}

func (l *Logger) WithEntry(field, value string) *logrus.Entry {
	return l.Logger.WithField(field, value)
}
