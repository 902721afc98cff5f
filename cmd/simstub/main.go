// Command simstub serves the simulator API backed by the in-memory fake
// simulator. It is meant for developing against the client without a real
// simulator.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/serverless-sim/simclient/internal/fakes"
	"github.com/serverless-sim/simclient/internal/simserver"
	"gopkg.in/inconshreveable/log15.v2"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:3000", "HTTP server listen address")
		maxSteps = flag.Int("max-steps", fakes.DefaultMaxSteps, "Steps until an episode stops")
		loglevel = flag.Int("loglevel", 3, "Log level to use for displaying system events")
	)
	flag.Parse()
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(*loglevel), log15.StreamHandler(os.Stderr, log15.TerminalFormat())))

	sim := fakes.NewSimulator(nil, *maxSteps)
	l, err := net.Listen("tcp", *addr)
	if err != nil {
		log15.Crit("can't listen", "addr", *addr, "err", err)
		os.Exit(1)
	}
	log15.Info("serving fake simulator", "url", "http://"+l.Addr().String())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := serve(ctx, l, simserver.NewAPI(sim, log15.Root()), log15.Root(), shutdownTimeout); err != nil {
		log15.Crit("server failed", "err", err)
		os.Exit(1)
	}
}

// serve runs the HTTP server on l until ctx is done, then shuts it down. Requests
// still running after timeout are abandoned and the shutdown failure is logged.
func serve(ctx context.Context, l net.Listener, h http.Handler, logger log15.Logger, timeout time.Duration) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), timeout)
		defer done()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()
	if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		logger.Warn("server shutdown failed", "err", err)
		return nil
	}
	logger.Info("server stopped")
	return nil
}
