// Package bus implements one simulated vehicle: a cyclic cursor over a
// route's out-and-back traversal sequence, emitting its position onto a
// shared rendezvous channel at a fixed cadence. Grounded on the
// teacher's driver/batch.go goroutine-per-unit simulation loop,
// generalized from batched passenger pickups to a plain position tick
// per original_source/fake_bus.py's run_bus coroutine.
package bus

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/s-klimov/buses-on-the-map/model"
)

// Producer drives one simulated bus: a private cursor over its route's
// traversal sequence, advanced one step per tick.
type Producer struct {
	busID    string
	route    string
	sequence []model.RoutePoint
	cursor   int

	refreshTimeout time.Duration
}

// NewProducer returns a Producer for one bus on route, with its cursor
// starting at a uniformly random offset into sequence.
func NewProducer(busID, route string, sequence []model.RoutePoint, refreshTimeout time.Duration, rng *rand.Rand) (*Producer, error) {
	if len(sequence) == 0 {
		return nil, fmt.Errorf("bus: producer %s: empty traversal sequence", busID)
	}
	return &Producer{
		busID:          busID,
		route:          route,
		sequence:       sequence,
		cursor:         rng.Intn(len(sequence)),
		refreshTimeout: refreshTimeout,
	}, nil
}

// Run advances the cursor and emits one BusCoordinate onto out every
// refreshTimeout, forever, until ctx is cancelled. Sending onto out is
// a strict hand-off (out is expected to be capacity-0): a slow egress
// side applies backpressure directly to this producer.
func (p *Producer) Run(ctx context.Context, out chan<- model.BusCoordinate) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}

		point := p.sequence[p.cursor]
		coord := model.BusCoordinate{
			BusID: p.busID,
			Lat:   point.Lat,
			Lng:   point.Lng,
			Route: p.route,
		}

		select {
		case out <- coord:
		case <-ctx.Done():
			return ctx.Err()
		}

		p.cursor = (p.cursor + 1) % len(p.sequence)
		timer.Reset(p.refreshTimeout)
	}
}
