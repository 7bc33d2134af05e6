package model

import "sync"

// WindowBoundsValues is a plain decoded set of the four bound values, used
// as the target of newBounds wire validation before being applied to a
// live WindowBounds.
type WindowBoundsValues struct {
	SouthLat float64
	NorthLat float64
	WestLng  float64
	EastLng  float64
}

// WindowBounds is the geographic rectangle of one browser client's current
// map viewport. Any of the four bounds may be unset until the client sends
// its first newBounds update.
type WindowBounds struct {
	mu       sync.RWMutex
	southLat *float64
	northLat *float64
	westLng  *float64
	eastLng  *float64
}

// Update atomically replaces all four bounds.
func (b *WindowBounds) Update(southLat, northLat, westLng, eastLng float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.southLat = &southLat
	b.northLat = &northLat
	b.westLng = &westLng
	b.eastLng = &eastLng
}

// ApplyValues is Update taking a decoded WindowBoundsValues.
func (b *WindowBounds) ApplyValues(v WindowBoundsValues) {
	b.Update(v.SouthLat, v.NorthLat, v.WestLng, v.EastLng)
}

// IsSet reports whether all four bounds have been set at least once.
func (b *WindowBounds) IsSet() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.southLat != nil && b.northLat != nil && b.westLng != nil && b.eastLng != nil
}

// Inside reports whether (lat, lng) lies strictly within the current
// bounds. Callers must check IsSet first; Inside returns false for any
// unset bound. south_lat < north_lat and west_lng < east_lng are assumed,
// never verified: an inverted window silently rejects everything.
func (b *WindowBounds) Inside(lat, lng float64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.southLat == nil || b.northLat == nil || b.westLng == nil || b.eastLng == nil {
		return false
	}
	return *b.southLat < lat && lat < *b.northLat && *b.westLng < lng && lng < *b.eastLng
}
