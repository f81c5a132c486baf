// Package log is the thin leveled wrapper the demo binary logs through.
// The core parser and connections packages never import it — they stay
// silent and report everything through callbacks and return values
// instead, the same split the teacher draws between its library code and
// its example binaries (which all reach for the standard log package
// directly rather than a structured logging library).
package log

import (
	"log"
	"os"
)

type Logger struct {
	*log.Logger
}

func New(prefix string) *Logger {
	return &Logger{log.New(os.Stderr, prefix+" ", log.LstdFlags)}
}

func (l *Logger) Errorf(format string, args ...any) {
	l.Printf("ERROR "+format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.Printf("INFO "+format, args...)
}
