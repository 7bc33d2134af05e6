package model

import "testing"

func TestWindowBoundsIsSetFalseUntilUpdated(t *testing.T) {
	var b WindowBounds
	if b.IsSet() {
		t.Fatal("expected unset bounds to report IsSet() == false")
	}
	b.Update(0, 10, 0, 10)
	if !b.IsSet() {
		t.Fatal("expected bounds to report IsSet() == true after Update")
	}
}

func TestWindowBoundsInsideReturnsFalseWhenUnset(t *testing.T) {
	var b WindowBounds
	if b.Inside(5, 5) {
		t.Fatal("expected Inside to return false for unset bounds")
	}
}

func TestWindowBoundsStrictInequality(t *testing.T) {
	var b WindowBounds
	b.Update(0, 10, 0, 10)

	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{5, 5, true},
		{0, 5, false},  // on south boundary
		{10, 5, false}, // on north boundary
		{5, 0, false},  // on west boundary
		{5, 10, false}, // on east boundary
	}
	for _, c := range cases {
		if got := b.Inside(c.lat, c.lng); got != c.want {
			t.Errorf("Inside(%v, %v) = %v, want %v", c.lat, c.lng, got, c.want)
		}
	}
}

func TestWindowBoundsInvertedSilentlyRejectsEverything(t *testing.T) {
	var b WindowBounds
	b.Update(10, 0, 10, 0) // south > north, west > east
	if b.Inside(5, 5) {
		t.Fatal("expected inverted bounds to reject every coordinate")
	}
}

func TestWindowBoundsApplyValues(t *testing.T) {
	var b WindowBounds
	b.ApplyValues(WindowBoundsValues{SouthLat: 1, NorthLat: 2, WestLng: 3, EastLng: 4})
	if !b.Inside(1.5, 3.5) {
		t.Fatal("expected point inside applied bounds")
	}
}
