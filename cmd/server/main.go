// Command server is the relay: it accepts emulator connections on the
// bus port, maintains the fleet map, and serves browser connections on
// the browser port with viewport-filtered, throttled fan-out. Grounded
// on the teacher's main.go + server/server.go wiring, restructured
// around urfave/cli and gorilla/mux per SPEC_FULL's ambient/domain
// stack.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/s-klimov/buses-on-the-map/fleet"
	"github.com/s-klimov/buses-on-the-map/ingest"
	"github.com/s-klimov/buses-on-the-map/logutil"
	"github.com/s-klimov/buses-on-the-map/metrics"
	"github.com/s-klimov/buses-on-the-map/session"
	"github.com/s-klimov/buses-on-the-map/wsutil"
)

func main() {
	verbosity := &logutil.CountFlag{}

	app := cli.NewApp()
	app.Name = "server"
	app.Usage = "relay bus positions from emulators to browser clients"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "bus_port", Value: 8080, Usage: "port accepting emulator ingest connections"},
		cli.IntFlag{Name: "browser_port", Value: 8000, Usage: "port accepting browser client connections"},
		cli.Float64Flag{Name: "refresh_timeout", Value: 0.2, Usage: "minimum seconds between snapshots sent to one session"},
		cli.StringFlag{Name: "redis_addr", Value: "", Usage: "optional Redis address for multi-process fan-out; empty disables it"},
		cli.GenericFlag{Name: "v", Value: verbosity, Usage: "increase log verbosity; repeatable"},
	}
	app.Action = func(c *cli.Context) error { return run(c, verbosity.Level()) }

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context, verbosity logutil.Level) error {
	busPort := c.Int("bus_port")
	if err := validatePort(busPort); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	browserPort := c.Int("browser_port")
	if err := validatePort(browserPort); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	refreshTimeout := c.Float64("refresh_timeout")
	if refreshTimeout < 0 {
		return cli.NewExitError("refresh_timeout must be non-negative", 2)
	}

	logger := logutil.NewLogger(os.Stderr, "server")

	var bus fleet.Bus
	if addr := c.String("redis_addr"); addr != "" {
		bus = fleet.NewRedisBus(addr)
		if verbosity.Enabled(logutil.LevelInfo) {
			logger.Printf("using redis fan-out at %s", addr)
		}
	} else {
		bus = fleet.NewLocalBus()
	}
	defer bus.Close()

	fleetMap := fleet.NewMap()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	busRouter := mux.NewRouter()
	ingestHandler := ingest.NewHandler(bus, logger)
	busRouter.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if err := ingestHandler.Serve(ctx, w, r); err != nil && verbosity.Enabled(logutil.LevelDebug) {
			logger.Printf("ingest connection ended: %v", err)
		}
	})
	busRouter.Handle("/metrics", promhttp.Handler())
	busRouter.HandleFunc("/healthz", healthz)

	browserRouter := mux.NewRouter()
	browserRouter.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsutil.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		metrics.SessionsActive.Inc()
		defer metrics.SessionsActive.Dec()

		refresh := secondsToDuration(refreshTimeout)
		sess := session.New(conn, fleetMap, bus, refresh, logger)
		if err := sess.Run(ctx); err != nil && verbosity.Enabled(logutil.LevelDebug) {
			logger.Printf("session ended: %v", err)
		}
	})
	browserRouter.Handle("/healthz", http.HandlerFunc(healthz))

	busServer := &http.Server{Addr: fmt.Sprintf(":%d", busPort), Handler: busRouter}
	browserServer := &http.Server{Addr: fmt.Sprintf(":%d", browserPort), Handler: browserRouter}

	group.Go(func() error { return serveUntilDone(ctx, busServer) })
	group.Go(func() error { return serveUntilDone(ctx, browserServer) })

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func serveUntilDone(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func validatePort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be in [0, 65535], got %d", port)
	}
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
