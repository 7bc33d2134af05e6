// Package fleet holds the server's process-wide view of where every bus
// last reported itself, and the fan-out mechanism that notifies sessions
// of updates. Grounded on the teacher's server/server.go Server struct,
// which guarded a single map with one mutex; generalized here into a
// dedicated type with last-writer-wins Upsert/Delete/Snapshot.
package fleet

import (
	"sync"

	"github.com/s-klimov/buses-on-the-map/model"
)

// Map is the concurrent busId -> last known BusCoordinate table. There is
// no TTL and no tombstone: an entry is only removed when a session receives
// a coordinate for that bus outside its viewport, so a bus that stops
// reporting stays at its last position.
type Map struct {
	mu    sync.RWMutex
	buses map[string]model.BusCoordinate
}

// NewMap returns an empty Map ready for use.
func NewMap() *Map {
	return &Map{buses: make(map[string]model.BusCoordinate)}
}

// Upsert records coord as the latest known position for its BusID,
// overwriting whatever was there before.
func (m *Map) Upsert(coord model.BusCoordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buses[coord.BusID] = coord
}

// Delete removes busID from the map, if present. Used when a session's
// viewport no longer contains a bus it previously tracked.
func (m *Map) Delete(busID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buses, busID)
}

// Snapshot returns a copy of every bus currently known. The copy is safe
// to range over without holding any lock.
func (m *Map) Snapshot() []model.BusCoordinate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.BusCoordinate, 0, len(m.buses))
	for _, c := range m.buses {
		out = append(out, c)
	}
	return out
}

// Len reports how many buses are currently tracked.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buses)
}
