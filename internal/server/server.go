// internal/server/server.go
//
// HTTP server construction and lifecycle.
//
// Production hardening:
//
//   - ReadTimeout        – abort slow-loris bodies (10 s)
//   - ReadHeaderTimeout  – abort slow-loris headers (5 s)
//   - IdleTimeout        – close keep-alives on idle clients (60 s)
//
// WriteTimeout stays zero: the change stream at /v1/whats-on/stream is a
// long-lived response, and a server-wide write deadline would sever it
// mid-flight.  Ordinary JSON handlers bound themselves through request
// contexts instead.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// shutdownGrace is how long in-flight requests get to finish once the
// process is asked to stop.
const shutdownGrace = 10 * time.Second

// New constructs an *http.Server with hardened defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for
// up to shutdownGrace before returning.  A listener that fails for any
// reason other than shutdown is returned as-is.
func Run(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	zap.S().Infow("http server listening", "addr", srv.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	drain, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(drain); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	zap.S().Infow("http server stopped")
	return nil
}
