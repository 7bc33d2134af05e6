// Command emulator simulates a fleet of buses, streaming their
// positions to a relay server over a pool of websocket connections.
// Grounded on the teacher's main.go CLI wiring, restructured around
// urfave/cli per rockstar-0000-aistore/cmd/cli/cli/app.go, with flag
// defaults and validation lifted from original_source/server.py's
// validate_port_number / click.BadParameter idiom (applied here to
// routes_number instead of a port).
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/s-klimov/buses-on-the-map/bus"
	"github.com/s-klimov/buses-on-the-map/egress"
	"github.com/s-klimov/buses-on-the-map/logutil"
	"github.com/s-klimov/buses-on-the-map/model"
	"github.com/s-klimov/buses-on-the-map/routeset"
)

const (
	routesDir   = "routes"
	maxRoutes   = 595
	metricsAddr = "127.0.0.1:9091"
)

func main() {
	verbosity := &logutil.CountFlag{}

	app := cli.NewApp()
	app.Name = "emulator"
	app.Usage = "simulate a fleet of buses streaming positions to a relay server"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "server", Value: "ws://127.0.0.1:8080/ws", Usage: "relay ingest websocket URL"},
		cli.IntFlag{Name: "routes_number", Value: maxRoutes, Usage: "number of routes to load from the corpus"},
		cli.IntFlag{Name: "buses_per_route", Value: 100, Usage: "upper bound on buses spawned per route"},
		cli.IntFlag{Name: "websockets_number", Value: 10, Usage: "number of egress connections to the relay"},
		cli.StringFlag{Name: "emulator_id", Value: "", Usage: "distinguishes busId namespaces across emulator instances"},
		cli.Float64Flag{Name: "refresh_timeout", Value: 0.3, Usage: "seconds between position updates per bus"},
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
	routesNumber := c.Int("routes_number")
	if routesNumber < 1 || routesNumber > maxRoutes {
		return cli.NewExitError(
			fmt.Sprintf("routes_number must be in [1, %d], got %d", maxRoutes, routesNumber), 2)
	}
	busesPerRoute := c.Int("buses_per_route")
	if busesPerRoute < 1 {
		return cli.NewExitError("buses_per_route must be positive", 2)
	}
	websocketsNumber := c.Int("websockets_number")
	if websocketsNumber < 1 {
		return cli.NewExitError("websockets_number must be positive", 2)
	}
	refreshTimeout := c.Float64("refresh_timeout")
	if refreshTimeout < 0 {
		return cli.NewExitError("refresh_timeout must be non-negative", 2)
	}

	logger := logutil.NewLogger(os.Stderr, "emulator")

	routes, err := routeset.LoadAll(routesDir, routesNumber)
	if err != nil {
		return fmt.Errorf("emulator: load route corpus: %w", err)
	}
	if verbosity.Enabled(logutil.LevelInfo) {
		logger.Printf("loaded %d routes", len(routes))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			<-ctx.Done()
			server.Close()
		}()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server: %v", err)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rendezvous := make(chan model.BusCoordinate)

	group, ctx := errgroup.WithContext(ctx)

	emulatorID := c.String("emulator_id")
	for _, route := range routes {
		route := route
		k := 1
		if busesPerRoute > 1 {
			k += rng.Intn(busesPerRoute - 1)
		}
		sequence := route.TraversalSequence()
		for i := 0; i < k; i++ {
			busID := bus.BusID(route.Name, emulatorID, i)
			producer, err := bus.NewProducer(busID, route.Name, sequence, secondsToDuration(refreshTimeout), rng)
			if err != nil {
				return fmt.Errorf("emulator: %w", err)
			}
			group.Go(func() error { return producer.Run(ctx, rendezvous) })
		}
	}

	pool := egress.NewPool(c.String("server"), websocketsNumber, logger)
	group.Go(func() error { return pool.Run(ctx, rendezvous) })

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
