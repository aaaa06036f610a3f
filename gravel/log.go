package gravel

import (
	"fmt"
	"strings"
	"sync/atomic"

	"strata.lol/lol"
)

// logger routes the messages of pebble into lol, below the level set on it.
type logger struct {
	Level atomic.Int32
	Label string
}

// NewLogger creates a new pebble logger.
func NewLogger(logLevel int, label string) (l *logger) {
	if label == "" {
		label = "gravel"
	}
	l = &logger{Label: label}
	l.Level.Store(int32(logLevel))
	return
}

// SetLogLevel atomically adjusts the log level to the given log level code.
func (l *logger) SetLogLevel(level int) { l.Level.Store(int32(level)) }

// Infof is a log printer for this level of message, pebble is chatty so its
// info goes out at debug.
func (l *logger) Infof(s string, i ...interface{}) {
	if l.Level.Load() >= lol.Debug {
		log.D.F("%s: %s", l.Label, strings.TrimSpace(fmt.Sprintf(s, i...)))
	}
}

// Errorf is a log printer for this level of message.
func (l *logger) Errorf(s string, i ...interface{}) {
	if l.Level.Load() >= lol.Error {
		log.E.F("%s: %s", l.Label, strings.TrimSpace(fmt.Sprintf(s, i...)))
	}
}

// Fatalf logs and panics, pebble does not expect it to return.
func (l *logger) Fatalf(s string, i ...interface{}) {
	txt := fmt.Sprintf(s, i...)
	log.F.F("%s: %s", l.Label, strings.TrimSpace(txt))
	panic(txt)
}
