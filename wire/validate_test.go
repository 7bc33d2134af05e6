package wire

import (
	"strings"
	"testing"
)

// S1 — validator accepts a well-formed viewport update.
func TestValidateNewBounds_Accepts(t *testing.T) {
	msg := `{"msgType":"newBounds","data":{"east_lng":37.65563964843751,"north_lat":55.77367652953477,"south_lat":55.72628839374007,"west_lng":37.54440307617188}}`
	bounds, ok, errDoc := ValidateNewBounds([]byte(msg))
	if !ok {
		t.Fatalf("expected valid, got errDoc=%s", errDoc)
	}
	if bounds.EastLng != 37.65563964843751 || bounds.NorthLat != 55.77367652953477 ||
		bounds.SouthLat != 55.72628839374007 || bounds.WestLng != 37.54440307617188 {
		t.Fatalf("unexpected bounds: %+v", bounds)
	}
}

// S2 — validator rejects non-JSON.
func TestValidateNewBounds_RejectsNonJSON(t *testing.T) {
	_, ok, errDoc := ValidateNewBounds([]byte(`"message"`))
	if ok {
		t.Fatal("expected rejection")
	}
	want := `{"errors":["Requires valid JSON"],"msgType":"Errors"}`
	if string(errDoc) != want {
		t.Fatalf("got %s, want %s", errDoc, want)
	}
}

// S3 — validator rejects wrong type for msgType.
func TestValidateNewBounds_RejectsWrongMsgTypeKind(t *testing.T) {
	msg := `{"msgType":185,"data":{"east_lng":37.6,"north_lat":55.77,"south_lat":55.72,"west_lng":37.54}}`
	_, ok, errDoc := ValidateNewBounds([]byte(msg))
	if ok {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(string(errDoc), `Тип сообщения должен быть строкой \"newBounds\".`) {
		t.Fatalf("got %s", errDoc)
	}
}

// S4 — validator rejects wrong kind on a bound.
func TestValidateNewBounds_RejectsWrongBoundKind(t *testing.T) {
	msg := `{"msgType":"newBounds","data":{"east_lng":"error","north_lat":55.77,"south_lat":55.72,"west_lng":37.54}}`
	_, ok, errDoc := ValidateNewBounds([]byte(msg))
	if ok {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(string(errDoc), "Правая граница карты должна быть числом с плавающей точкой.") {
		t.Fatalf("got %s", errDoc)
	}
}

// S5 — validator rejects extra fields on a coordinate.
func TestValidateBusCoordinate_RejectsExtraField(t *testing.T) {
	msg := `{"busId":"c790сс","lat":55.75,"lng":37.6,"route":"120","some":"field"}`
	_, ok, errDoc := ValidateBusCoordinate([]byte(msg))
	if ok {
		t.Fatal("expected rejection")
	}
	want := `{"errors":["Requires msgType specified"],"msgType":"Errors"}`
	if string(errDoc) != want {
		t.Fatalf("got %s, want %s", errDoc, want)
	}
}

func TestValidateBusCoordinate_Accepts(t *testing.T) {
	msg := `{"busId":"120-000","lat":55.75,"lng":37.62,"route":"120"}`
	bc, ok, errDoc := ValidateBusCoordinate([]byte(msg))
	if !ok {
		t.Fatalf("expected valid, got errDoc=%s", errDoc)
	}
	if bc.BusID != "120-000" || bc.Lat != 55.75 || bc.Lng != 37.62 || bc.Route != "120" {
		t.Fatalf("unexpected decode: %+v", bc)
	}
}

func TestValidateBusCoordinate_RejectsNonJSON(t *testing.T) {
	_, ok, errDoc := ValidateBusCoordinate([]byte(`not json`))
	if ok {
		t.Fatal("expected rejection")
	}
	want := `{"errors":["Requires valid JSON"],"msgType":"Errors"}`
	if string(errDoc) != want {
		t.Fatalf("got %s, want %s", errDoc, want)
	}
}

func TestValidateBusCoordinate_RejectsMissingField(t *testing.T) {
	msg := `{"busId":"120-000","lat":55.75,"lng":37.62}`
	_, ok, errDoc := ValidateBusCoordinate([]byte(msg))
	if ok {
		t.Fatal("expected rejection")
	}
	want := `{"errors":["Requires msgType specified"],"msgType":"Errors"}`
	if string(errDoc) != want {
		t.Fatalf("got %s, want %s", errDoc, want)
	}
}
