package fleet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/s-klimov/buses-on-the-map/model"
)

func TestMapUpsertOverwritesLastWriterWins(t *testing.T) {
	m := NewMap()
	m.Upsert(model.BusCoordinate{BusID: "c790сс", Lat: 55.7, Lng: 37.6, Route: "120"})
	m.Upsert(model.BusCoordinate{BusID: "c790сс", Lat: 55.8, Lng: 37.7, Route: "120"})

	snap := m.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 bus, got %d", len(snap))
	}
	if snap[0].Lat != 55.8 || snap[0].Lng != 37.7 {
		t.Fatalf("expected last write to win, got %+v", snap[0])
	}
}

func TestMapDeleteRemovesBus(t *testing.T) {
	m := NewMap()
	m.Upsert(model.BusCoordinate{BusID: "x", Lat: 1, Lng: 2, Route: "1"})
	m.Delete("x")
	if m.Len() != 0 {
		t.Fatalf("expected empty map after delete, got %d", m.Len())
	}
}

func TestMapConcurrentUpsert(t *testing.T) {
	m := NewMap()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Upsert(model.BusCoordinate{BusID: "bus", Lat: float64(i), Lng: float64(i), Route: "r"})
		}(i)
	}
	wg.Wait()
	if m.Len() != 1 {
		t.Fatalf("expected single bus id to collapse writes, got %d", m.Len())
	}
}

func TestLocalBusPublishSubscribe(t *testing.T) {
	b := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	coord := model.BusCoordinate{BusID: "a", Lat: 1, Lng: 2, Route: "1"}
	if err := b.Publish(ctx, coord); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-ch:
		if got != coord {
			t.Fatalf("got %+v, want %+v", got, coord)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published coordinate")
	}
}

func TestLocalBusSubscribeClosesOnCancel(t *testing.T) {
	b := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
