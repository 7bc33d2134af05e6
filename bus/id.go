package bus

import "fmt"

// BusID formats the busId used on the wire: "{route}-{emulatorID}{index}"
// with index zero-padded to three digits, so two emulators running with
// distinct emulatorID values never collide on busId.
func BusID(route, emulatorID string, index int) string {
	return fmt.Sprintf("%s-%s%03d", route, emulatorID, index)
}
