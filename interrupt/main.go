// Package interrupt is a handler for shutdown when receiving internal or external
// interrupt signals, running a chain of handlers in the reverse order they were
// added so resources are released before the things they depend on.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"strata.lol/log"
)

var (
	mx       sync.Mutex
	handlers []func()
	ch       = make(chan os.Signal, 1)
	once     sync.Once
	// HandlersDone is closed after all interrupt handlers have run.
	HandlersDone = make(chan struct{})
)

// AddHandler adds a handler to run on shutdown. The listener is started on the first call.
func AddHandler(handler func()) {
	once.Do(Listener)
	mx.Lock()
	handlers = append(handlers, handler)
	mx.Unlock()
}

// Listener starts waiting for SIGINT or SIGTERM.
func Listener() {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-ch
		log.I.F("received signal %s, shutting down", sig)
		run()
	}()
}

// Request triggers the same shutdown as receiving a signal.
func Request() {
	once.Do(Listener)
	select {
	case ch <- os.Interrupt:
	default:
	}
}

func run() {
	mx.Lock()
	hs := make([]func(), len(handlers))
	copy(hs, handlers)
	mx.Unlock()
	for i := len(hs) - 1; i >= 0; i-- {
		hs[i]()
	}
	close(HandlersDone)
}
