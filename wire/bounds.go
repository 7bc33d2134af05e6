package wire

import "github.com/s-klimov/buses-on-the-map/model"

// windowBoundsDataSchema validates the nested "data" object of a newBounds
// frame: the four WindowBounds fields, each a floating point number.
var windowBoundsDataSchema = Schema{
	Name: "WindowBounds",
	Fields: []Field{
		{Name: "south_lat", Kind: KindFloat, Message: "Южная граница карты должна быть числом с плавающей точкой."},
		{Name: "north_lat", Kind: KindFloat, Message: "Северная граница карты должна быть числом с плавающей точкой."},
		{Name: "west_lng", Kind: KindFloat, Message: "Левая граница карты должна быть числом с плавающей точкой."},
		{Name: "east_lng", Kind: KindFloat, Message: `Правая граница карты должна быть числом с плавающей точкой.`},
	},
}

// NewBoundsSchema validates a client-port viewport update: a msgType
// literal "newBounds" plus a data object matching windowBoundsDataSchema.
var NewBoundsSchema = Schema{
	Name: "newBounds",
	Fields: []Field{
		{Name: "msgType", Kind: KindString, Message: `Тип сообщения должен быть строкой "newBounds".`},
		{Name: "data", Kind: KindObject, Message: "data must be an object", Nested: &windowBoundsDataSchema},
	},
}

// ValidateNewBounds validates a raw client-port frame. On success it
// returns the four decoded bounds and a nil error document; on failure it
// returns the canonical Errors document to send back to the browser.
func ValidateNewBounds(message []byte) (bounds model.WindowBoundsValues, ok bool, errDoc []byte) {
	validated, errDoc, values := NewBoundsSchema.Validate(message)
	if !validated {
		return model.WindowBoundsValues{}, false, errDoc
	}
	if values["msgType"].(string) != "newBounds" {
		return model.WindowBoundsValues{}, false, errMissingShapeDoc
	}
	data := values["data"].(map[string]any)
	return model.WindowBoundsValues{
		SouthLat: data["south_lat"].(float64),
		NorthLat: data["north_lat"].(float64),
		WestLng:  data["west_lng"].(float64),
		EastLng:  data["east_lng"].(float64),
	}, true, nil
}
