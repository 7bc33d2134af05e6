package fleet

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/s-klimov/buses-on-the-map/model"
)

// redisChannel is the pub/sub channel every relay process publishes
// BusCoordinate updates to and subscribes on.
const redisChannel = "buses-on-the-map:coordinates"

// redisBus is a Bus backed by Redis pub/sub, letting a fleet of relay
// server processes share updates without any of them persisting state.
type redisBus struct {
	client *redis.Client
}

// NewRedisBus returns a distributed Bus for the Redis server at addr. The connection is
// not verified until the first Publish or Subscribe call.
func NewRedisBus(addr string) Bus {
	return &redisBus{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (b *redisBus) Publish(ctx context.Context, coord model.BusCoordinate) error {
	payload, err := json.Marshal(coord)
	if err != nil {
		return fmt.Errorf("fleet: marshal coordinate for publish: %w", err)
	}
	return b.client.Publish(ctx, redisChannel, payload).Err()
}

func (b *redisBus) Subscribe(ctx context.Context) (<-chan model.BusCoordinate, error) {
	pubsub := b.client.Subscribe(ctx, redisChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("fleet: subscribe: %w", err)
	}

	out := make(chan model.BusCoordinate, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var coord model.BusCoordinate
				if err := json.Unmarshal([]byte(msg.Payload), &coord); err != nil {
					continue
				}
				select {
				case out <- coord:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (b *redisBus) Close() error {
	return b.client.Close()
}
