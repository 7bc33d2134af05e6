// Package ingest accepts upstream emulator connections on the bus port
// and turns each valid frame into a publish onto the shared fleet.Bus.
// Grounded on the teacher's server/server.go accept loop, adapted to
// the validated-frame taxonomy of original_source/server.py's
// get_message handler.
package ingest

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/s-klimov/buses-on-the-map/fleet"
	"github.com/s-klimov/buses-on-the-map/metrics"
	"github.com/s-klimov/buses-on-the-map/wire"
	"github.com/s-klimov/buses-on-the-map/wsutil"
)

// Handler upgrades incoming HTTP requests to websocket connections and
// reads a stream of BusCoordinate frames from each, publishing valid
// ones onto bus. Invalid frames get an Errors document written back to
// the peer; the connection stays open.
type Handler struct {
	bus    fleet.Bus
	logger *log.Logger
}

// NewHandler returns a Handler that publishes validated coordinates
// onto bus.
func NewHandler(bus fleet.Bus, logger *log.Logger) *Handler {
	return &Handler{bus: bus, logger: logger}
}

// ServeHTTP implements http.Handler, upgrading the connection and
// running the read loop until the peer disconnects or ctx is done.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Serve(r.Context(), w, r)
}

// Serve upgrades the request and drives the read loop. Exposed
// separately from ServeHTTP so callers can supply a server-scoped
// context instead of the request's own (which cancels on handler
// return in some router configurations).
func (h *Handler) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	conn, err := wsutil.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("ingest: upgrade: %w", err)
	}
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ingest: read: %w", err)
		}
		metrics.IngestFramesTotal.Inc()

		coord, ok, errDoc := wire.ValidateBusCoordinate(message)
		if !ok {
			metrics.ValidationErrorsTotal.WithLabelValues("BusCoordinate").Inc()
			if writeErr := conn.WriteMessage(websocket.TextMessage, errDoc); writeErr != nil {
				return fmt.Errorf("ingest: write errors doc: %w", writeErr)
			}
			continue
		}

		if err := h.bus.Publish(ctx, coord); err != nil {
			return fmt.Errorf("ingest: publish: %w", err)
		}
	}
}
