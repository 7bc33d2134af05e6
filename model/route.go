package model

import "encoding/json"

// RoutePoint is a single WGS84 (lat, lng) pair in a route's coordinate list.
type RoutePoint struct {
	Lat float64
	Lng float64
}

// Route is one descriptor loaded from the route corpus: a name and an
// ordered sequence of coordinates, length >= 1.
type Route struct {
	Name        string
	Coordinates []RoutePoint
}

// rawRoute mirrors the on-disk shape: coordinates as [lat, lng] pairs.
type rawRoute struct {
	Name        string        `json:"name"`
	Coordinates [][2]float64  `json:"coordinates"`
}

// UnmarshalJSON accepts coordinates encoded as [lat, lng] pairs, the shape
// used by the route corpus (routes/*.json). Extra fields are ignored.
func (r *Route) UnmarshalJSON(data []byte) error {
	var raw rawRoute
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Name = raw.Name
	r.Coordinates = make([]RoutePoint, len(raw.Coordinates))
	for i, c := range raw.Coordinates {
		r.Coordinates[i] = RoutePoint{Lat: c[0], Lng: c[1]}
	}
	return nil
}

// MarshalJSON writes coordinates back out as [lat, lng] pairs.
func (r Route) MarshalJSON() ([]byte, error) {
	pairs := make([][2]float64, len(r.Coordinates))
	for i, c := range r.Coordinates {
		pairs[i] = [2]float64{c.Lat, c.Lng}
	}
	return json.Marshal(rawRoute{Name: r.Name, Coordinates: pairs})
}

// TraversalSequence returns the out-and-back cyclic sequence a bus follows:
// the route's coordinates followed by their reverse.
func (r *Route) TraversalSequence() []RoutePoint {
	n := len(r.Coordinates)
	seq := make([]RoutePoint, 0, 2*n)
	seq = append(seq, r.Coordinates...)
	for i := n - 1; i >= 0; i-- {
		seq = append(seq, r.Coordinates[i])
	}
	return seq
}
