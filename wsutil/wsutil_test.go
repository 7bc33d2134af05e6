package wsutil

import "testing"

func TestUpgraderAcceptsAnyOrigin(t *testing.T) {
	if !Upgrader.CheckOrigin(nil) {
		t.Fatal("expected CheckOrigin to accept all origins")
	}
}
