// Package session implements one browser client's websocket lifetime: a
// listener task that applies viewport updates and a publisher task that
// filters and throttles the fleet's coordinate stream back to the
// browser. Grounded on the teacher's server/server.go connection-handler
// shape, generalized from its single talk_to_browser handler (per
// original_source/server.py) into the listener/publisher task pair
// spec.md calls for, joined with an errgroup per spec.md §5.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/s-klimov/buses-on-the-map/fleet"
	"github.com/s-klimov/buses-on-the-map/metrics"
	"github.com/s-klimov/buses-on-the-map/model"
	"github.com/s-klimov/buses-on-the-map/wire"
)

// busesFrame is the fleet snapshot document pushed to a browser client.
type busesFrame struct {
	MsgType string                 `json:"msgType"`
	Buses   []model.BusCoordinate `json:"buses"`
}

// Session owns one accepted browser connection: a shared Viewport plus
// the listener/publisher pair draining and filling it.
type Session struct {
	conn   *websocket.Conn
	writeMu sync.Mutex

	bounds *model.WindowBounds
	fleet  *fleet.Map
	bus    fleet.Bus

	refreshTimeout time.Duration
	lastSent       time.Time

	logger *log.Logger
}

// New constructs a Session for an already-upgraded browser connection.
func New(conn *websocket.Conn, fleetMap *fleet.Map, bus fleet.Bus, refreshTimeout time.Duration, logger *log.Logger) *Session {
	return &Session{
		conn:           conn,
		bounds:         &model.WindowBounds{},
		fleet:          fleetMap,
		bus:            bus,
		refreshTimeout: refreshTimeout,
		logger:         logger,
	}
}

// Run drives the session until the connection closes or ctx is
// cancelled, joining the listener and publisher tasks in one scope: if
// either ends, the other is cancelled as a sibling.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)
	go func() {
		// The listener blocks in ReadMessage, which does not observe ctx;
		// closing the connection is what unblocks it.
		<-ctx.Done()
		s.conn.Close()
	}()
	group.Go(func() error { defer cancel(); return s.listen(ctx) })
	group.Go(func() error { defer cancel(); return s.publish(ctx) })
	return group.Wait()
}

// listen reads newBounds frames from the browser and atomically updates
// the shared viewport. An invalid frame gets an Errors document written
// back; the viewport is left untouched.
func (s *Session) listen(ctx context.Context) error {
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("session: listen: %w", err)
		}

		bounds, ok, errDoc := wire.ValidateNewBounds(message)
		if !ok {
			metrics.ValidationErrorsTotal.WithLabelValues("newBounds").Inc()
			if writeErr := s.writeRaw(errDoc); writeErr != nil {
				return fmt.Errorf("session: write errors doc: %w", writeErr)
			}
			continue
		}
		s.bounds.ApplyValues(bounds)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// publish drains the bus subscription and forwards fleet snapshots to
// the browser, filtered by viewport and throttled by refreshTimeout.
func (s *Session) publish(ctx context.Context) error {
	updates, err := s.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("session: subscribe: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case coord, ok := <-updates:
			if !ok {
				return nil
			}
			if err := s.handleCoordinate(coord); err != nil {
				return err
			}
		}
	}
}

// handleCoordinate applies the viewport filter, the lazy fleet-map
// expunge, and the send throttle to a single incoming coordinate.
func (s *Session) handleCoordinate(coord model.BusCoordinate) error {
	if !s.bounds.IsSet() {
		return nil
	}

	if !s.bounds.Inside(coord.Lat, coord.Lng) {
		s.fleet.Delete(coord.BusID)
		return nil
	}

	s.fleet.Upsert(coord)
	metrics.FleetSize.Set(float64(s.fleet.Len()))

	now := time.Now()
	if !s.lastSent.IsZero() && now.Sub(s.lastSent) < s.refreshTimeout {
		metrics.SnapshotsSuppressedTotal.Inc()
		return nil
	}
	s.lastSent = now

	frame := busesFrame{MsgType: "Buses", Buses: s.fleet.Snapshot()}
	payload, err := encodeFrame(frame)
	if err != nil {
		return fmt.Errorf("session: encode snapshot: %w", err)
	}
	if err := s.writeRaw(payload); err != nil {
		return err
	}
	metrics.SnapshotsSentTotal.Inc()
	return nil
}

// writeRaw sends message as a single text frame, serialized against
// concurrent writes from the listener's error responses.
func (s *Session) writeRaw(message []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, message)
}

// encodeFrame marshals v with HTML-escaping disabled, so <, > and & are
// written as-is; non-ASCII route names are written as UTF-8 codepoints
// rather than \uXXXX escapes, as encoding/json always does.
func encodeFrame(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
