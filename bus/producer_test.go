package bus

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/s-klimov/buses-on-the-map/model"
)

func TestNewProducerRejectsEmptySequence(t *testing.T) {
	_, err := NewProducer("x-000", "x", nil, time.Millisecond, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected error for empty sequence")
	}
}

func TestProducerAdvancesCyclically(t *testing.T) {
	seq := []model.RoutePoint{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
	p, err := NewProducer("120-000", "120", seq, time.Millisecond, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}

	out := make(chan model.BusCoordinate)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx, out) }()

	var lats []float64
	for i := 0; i < 5; i++ {
		select {
		case coord := <-out:
			if coord.BusID != "120-000" || coord.Route != "120" {
				t.Fatalf("unexpected coordinate %+v", coord)
			}
			lats = append(lats, coord.Lat)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for coordinate")
		}
	}

	for i := 1; i < len(lats); i++ {
		prev, cur := int(lats[i-1]), int(lats[i])
		if (prev+1)%3 != cur {
			t.Fatalf("expected cyclic advance, got %v", lats)
		}
	}

	cancel()
	if err := <-errCh; err == nil {
		t.Fatal("expected context cancellation error")
	}
}
