package ratel

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"strata.lol/lol"
)

// NewLogger creates a new badger logger.
func NewLogger(logLevel int, label string) (l *logger) {
	log.T.Ln("getting logger for", label)
	if label == "" {
		label = "ratel"
	}
	l = &logger{Label: label}
	l.Level.Store(int32(logLevel))
	return
}

// logger routes the messages of badger into lol, below the level set on it.
type logger struct {
	Level atomic.Int32
	Label string
}

// SetLogLevel atomically adjusts the log level to the given log level code.
func (l *logger) SetLogLevel(level int) {
	l.Level.Store(int32(level))
}

func (l *logger) print(level int32, s string, i ...interface{}) (txt, loc string) {
	txt = strings.TrimSpace(fmt.Sprintf(l.Label+": "+s, i...))
	_, file, line, _ := runtime.Caller(3)
	loc = fmt.Sprintf("%s:%d", file, line)
	return
}

// Errorf is a log printer for this level of message.
func (l *logger) Errorf(s string, i ...interface{}) {
	if l.Level.Load() >= lol.Error {
		txt, loc := l.print(lol.Error, s, i...)
		log.E.F("%s\n%s", txt, loc)
	}
}

// Warningf is a log printer for this level of message.
func (l *logger) Warningf(s string, i ...interface{}) {
	if l.Level.Load() >= lol.Warn {
		txt, loc := l.print(lol.Warn, s, i...)
		log.W.F("%s\n%s", txt, loc)
	}
}

// Infof is a log printer for this level of message.
func (l *logger) Infof(s string, i ...interface{}) {
	if l.Level.Load() >= lol.Info {
		txt, loc := l.print(lol.Info, s, i...)
		log.D.F("%s\n%s", txt, loc)
	}
}

// Debugf is a log printer for this level of message.
func (l *logger) Debugf(s string, i ...interface{}) {
	if l.Level.Load() >= lol.Debug {
		txt, loc := l.print(lol.Debug, s, i...)
		log.T.F("%s\n%s", txt, loc)
	}
}
