// Package wsutil holds the websocket dial/upgrade settings shared by the
// emulator's egress pool and the server's ingest/client ports. Grounded
// on the buffer-size and write-deadline conventions of
// other_examples/live_location_service.go's driver/monitor websocket
// handling.
package wsutil

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WriteTimeout bounds how long a single websocket write may block
// before the connection is considered dead.
const WriteTimeout = 5 * time.Second

// Dialer is the shared client-side dialer used to open egress
// connections to the relay's ingest port.
var Dialer = websocket.Dialer{
	HandshakeTimeout: 10 * time.Second,
}

// Upgrader is the shared server-side upgrader used on both the ingest
// and client ports.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
