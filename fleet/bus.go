package fleet

import (
	"context"
	"sync"

	"github.com/s-klimov/buses-on-the-map/model"
)

// Bus fans incoming BusCoordinate updates out to every relay server
// process subscribed to it. A single process always has a local Bus;
// when run as a fleet of relay processes behind a shared ingest load
// balancer, a Redis-backed Bus lets every process see every update
// without any process persisting state of its own — pub/sub carries no
// retained history, so this does not reintroduce the persistence the
// system deliberately omits elsewhere.
type Bus interface {
	// Publish announces coord to every subscriber, including ones in
	// other processes if the Bus is distributed.
	Publish(ctx context.Context, coord model.BusCoordinate) error
	// Subscribe returns a channel of updates. The channel is closed once
	// ctx is done.
	Subscribe(ctx context.Context) (<-chan model.BusCoordinate, error)
	// Close releases any resources held by the Bus.
	Close() error
}

// localBus is the default Bus: an in-process fan-out with no external
// dependency, sufficient for a single relay server instance.
type localBus struct {
	mu   sync.Mutex
	subs map[chan model.BusCoordinate]struct{}
}

// NewLocalBus returns a Bus that only fans updates out within this
// process.
func NewLocalBus() Bus {
	return &localBus{subs: make(map[chan model.BusCoordinate]struct{})}
}

func (b *localBus) Publish(ctx context.Context, coord model.BusCoordinate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- coord:
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Slow subscriber: drop rather than block publishers. A
			// session that misses an update still gets the next one
			// via its own throttled snapshot send.
		}
	}
	return nil
}

func (b *localBus) Subscribe(ctx context.Context) (<-chan model.BusCoordinate, error) {
	ch := make(chan model.BusCoordinate, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	return nil
}
