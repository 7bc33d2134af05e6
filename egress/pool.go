// Package egress implements the emulator's outbound socket pool: a
// fixed number of websocket connections to the relay's ingest port,
// drained from a shared rendezvous channel with a uniformly random
// connection pick per send, wrapped in a reconnect-on-failure
// supervision loop. Grounded on the teacher's driver/batch.go worker
// pool shape, adapted to gorilla/websocket per
// other_examples/live_location_service.go, with the RELAUNCH_INTERVAL
// reconnect behavior of original_source/fake_bus.py's run_bus retry.
package egress

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/s-klimov/buses-on-the-map/metrics"
	"github.com/s-klimov/buses-on-the-map/model"
	"github.com/s-klimov/buses-on-the-map/wsutil"
)

// RelaunchInterval is how long the supervision loop waits after a pool
// failure before reopening every connection.
const RelaunchInterval = 1 * time.Second

// socket pairs a connection with the mutex guarding its writes; gorilla
// connections are not safe for concurrent writers.
type socket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *socket) send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(wsutil.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *socket) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.Close()
}

// Pool is one generation of the egress socket set: count connections to
// serverURL, each picked uniformly at random on every send.
type Pool struct {
	serverURL string
	count     int
	logger    *log.Logger
}

// NewPool returns a Pool configuration; connections are not opened
// until Run is called.
func NewPool(serverURL string, count int, logger *log.Logger) *Pool {
	return &Pool{serverURL: serverURL, count: count, logger: logger}
}

// Run drains in, sending each coordinate over a uniformly random
// connection from the pool, until ctx is cancelled. On any connection
// failure (dial or mid-stream), it logs once, sleeps RelaunchInterval,
// and reopens the whole pool; producers blocked sending on in are
// unaffected by the reconnect, since in is read from again as soon as
// the new pool is live.
func (p *Pool) Run(ctx context.Context, in <-chan model.BusCoordinate) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		sockets, err := p.dialAll(ctx)
		if err != nil {
			p.logger.Printf("egress: dial pool: %v", err)
			if !p.sleepOrDone(ctx) {
				return ctx.Err()
			}
			continue
		}

		err = p.drain(ctx, in, sockets, rng)
		closeAll(sockets)

		if err == nil || err == ctx.Err() {
			return err
		}

		p.logger.Printf("egress: connection lost: %v", err)
		metrics.EgressReconnectsTotal.Inc()
		if !p.sleepOrDone(ctx) {
			return ctx.Err()
		}
	}
}

func (p *Pool) sleepOrDone(ctx context.Context) bool {
	select {
	case <-time.After(RelaunchInterval):
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pool) dialAll(ctx context.Context) ([]*socket, error) {
	sockets := make([]*socket, 0, p.count)
	for i := 0; i < p.count; i++ {
		conn, _, err := wsutil.Dialer.DialContext(ctx, p.serverURL, nil)
		if err != nil {
			closeAll(sockets)
			return nil, fmt.Errorf("egress: dial %s: %w", p.serverURL, err)
		}
		sockets = append(sockets, &socket{conn: conn})
	}
	return sockets, nil
}

func closeAll(sockets []*socket) {
	for _, s := range sockets {
		s.close()
	}
}

func (p *Pool) drain(ctx context.Context, in <-chan model.BusCoordinate, sockets []*socket, rng *rand.Rand) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case coord, ok := <-in:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(coord)
			if err != nil {
				return fmt.Errorf("egress: marshal coordinate: %w", err)
			}
			idx := rng.Intn(len(sockets))
			if err := sockets[idx].send(payload); err != nil {
				return fmt.Errorf("egress: send: %w", err)
			}
			metrics.EgressSendsTotal.WithLabelValues(strconv.Itoa(idx)).Inc()
		}
	}
}
