package egress

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/s-klimov/buses-on-the-map/model"
)

var upgrader = websocket.Upgrader{}

// countingServer accepts any number of websocket connections and counts
// how many text frames each one receives.
type countingServer struct {
	mu     sync.Mutex
	counts map[int]int
	next   int
}

func newCountingServer() *countingServer {
	return &countingServer{counts: make(map[int]int)}
}

func (s *countingServer) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	id := s.next
	s.next++
	s.mu.Unlock()

	go func() {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			s.mu.Lock()
			s.counts[id]++
			s.mu.Unlock()
		}
	}()
}

func (s *countingServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, c := range s.counts {
		total += c
	}
	return total
}

func TestPoolSpreadsLoadAcrossSockets(t *testing.T) {
	srv := newCountingServer()
	httpSrv := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer httpSrv.Close()

	wsURL := "ws" + httpSrv.URL[len("http"):]

	const sockets = 5
	const messages = 1000

	pool := NewPool(wsURL, sockets, log.New(os.Stderr, "", 0))
	in := make(chan model.BusCoordinate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- pool.Run(ctx, in) }()

	for i := 0; i < messages; i++ {
		in <- model.BusCoordinate{BusID: "x", Lat: 1, Lng: 1, Route: "1"}
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.total() < messages && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if got := srv.total(); got != messages {
		t.Fatalf("expected server to receive %d messages, got %d", messages, got)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.counts) != sockets {
		t.Fatalf("expected %d distinct sockets used, got %d", sockets, len(srv.counts))
	}
	expected := float64(messages) / float64(sockets)
	for id, c := range srv.counts {
		ratio := float64(c) / expected
		if ratio < 0.5 || ratio > 1.5 {
			t.Errorf("socket %d received %d messages, expected roughly %v (+/-50%%)", id, c, expected)
		}
	}
}
