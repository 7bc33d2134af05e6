package wire

import "github.com/s-klimov/buses-on-the-map/model"

// BusCoordinateSchema validates an ingest-port frame against the
// BusCoordinate shape: busId, lat, lng, route, nothing more, nothing less.
var BusCoordinateSchema = Schema{
	Name: "BusCoordinate",
	Fields: []Field{
		{Name: "busId", Kind: KindString, Message: "busId must be a string"},
		{Name: "lat", Kind: KindFloat, Message: "lat must be a floating point number"},
		{Name: "lng", Kind: KindFloat, Message: "lng must be a floating point number"},
		{Name: "route", Kind: KindString, Message: "route must be a string"},
	},
}

// ValidateBusCoordinate validates a raw ingest frame. On success it returns
// the decoded BusCoordinate and a nil error document; on failure it
// returns the canonical Errors document to send back to the peer.
func ValidateBusCoordinate(message []byte) (model.BusCoordinate, bool, []byte) {
	ok, errDoc, values := BusCoordinateSchema.Validate(message)
	if !ok {
		return model.BusCoordinate{}, false, errDoc
	}
	return model.BusCoordinate{
		BusID: values["busId"].(string),
		Lat:   values["lat"].(float64),
		Lng:   values["lng"].(float64),
		Route: values["route"].(string),
	}, true, nil
}
