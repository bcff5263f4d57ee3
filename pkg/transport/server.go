package transport

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader permits any origin: the core imposes no auth policy of its
// own (spec.md §1's "auth middleware... external collaborators"); a
// production deployment wraps this handler behind one that does.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades incoming HTTP requests to WebSocket connections and
// hands each one to onConnect, run in its own goroutine — mirroring
// the teacher's one-handler-per-request HTTP pattern
// (pkg/server/server.go's mux.HandleFunc registrations), generalized
// to a single long-lived connection instead of a request/response
// pair.
func Handler(onConnect func(*Conn)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("transport: upgrade failed: %v", err)
			return
		}
		conn := NewConn(ws)
		go func() {
			defer conn.Close()
			onConnect(conn)
		}()
	}
}
