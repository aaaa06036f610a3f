package main

import (
	"os"
	"runtime"
	"time"

	"strata.lol/context"
)

// MonitorResources logs the goroutine and cgo call counts every minute until
// the context is done.
func MonitorResources(c context.T) {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	log.I.Ln("running process", os.Args[0], os.Getpid())
	for {
		select {
		case <-c.Done():
			log.D.Ln("shutting down resource monitor")
			return
		case <-tick.C:
			log.D.Ln("# goroutines", runtime.NumGoroutine())
			log.D.Ln("# cgo calls", runtime.NumCgoCall())
		}
	}
}
