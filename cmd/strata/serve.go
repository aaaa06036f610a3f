package main

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"strata.lol/context"
)

// Serve runs the HTTP server until the context is cancelled, then shuts it
// down gracefully. A positive maxConns caps the connections served at once.
func Serve(c cx, host st, port, maxConns no, handler http.Handler) (err er) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var ln net.Listener
	if ln, err = net.Listen("tcp", addr); chk.E(err) {
		return
	}
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}
	log.I.F("listening at %s", ln.Addr())
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	group, ctx := errgroup.WithContext(c)
	group.Go(func() (err error) {
		if err = srv.Serve(ln); errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return
	})
	group.Go(func() error {
		<-ctx.Done()
		ctx, cancel := context.Timeout(context.Bg(), 5*time.Second)
		defer cancel()
		log.I.Ln("shutting down http server")
		return srv.Shutdown(ctx)
	})
	return group.Wait()
}
