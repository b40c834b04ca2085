// Package live turns board.Board's long-poll Watch contract into a standing
// WebSocket stream, adapted from the connection-handling shape of this
// repository's original card-game hub: one goroutine writes, one reads, a
// ping ticker keeps the connection alive, and per-connection state never
// duplicates anything the Board itself already tracks.
package live

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"example.com/memoryscramble/board"
)

// Hub accepts WebSocket connections and, per connection, repeatedly calls
// board.Watch(viewerID) and writes each resolved rendering as a text frame.
// It holds no board state of its own: every decision about what a client
// sees comes from the Board.
type Hub struct {
	board        *board.Board
	allowOrigins map[string]bool
}

// NewHub builds a Hub serving b, accepting connections only from the given
// origins (an empty allow-list accepts any origin, matching the teacher
// hub's permissive default for local development).
func NewHub(b *board.Board, allowOrigins []string) *Hub {
	allow := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		if o != "" {
			allow[o] = true
		}
	}
	return &Hub{board: b, allowOrigins: allow}
}

// ServeHTTP lets a Hub be mounted directly as an http.Handler, e.g. for a
// dedicated /ws route alongside the Gin front door.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ServeWS(w, r)
}

// ServeWS upgrades r to a WebSocket connection identified by the "pid" query
// parameter and streams that viewer's board renderings to it until the
// client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if len(h.allowOrigins) > 0 {
		origin := r.Header.Get("Origin")
		if origin != "" && !h.allowOrigins[origin] {
			http.Error(w, "forbidden origin", http.StatusForbidden)
			return
		}
	}

	viewerID := r.URL.Query().Get("pid")
	if viewerID == "" {
		http.Error(w, "missing pid", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	// Viewers never send data, but pongs and close frames still have to be
	// read; CloseRead does that and cancels the context once the
	// connection closes.
	r = r.WithContext(conn.CloseRead(r.Context()))
	connID := uuid.NewString()
	log.Printf("live: viewer %s connected as %s", viewerID, connID)

	send := make(chan string, 8)
	done := make(chan struct{})

	go h.writer(r, conn, send, done)
	h.watchLoop(r, viewerID, send, done)

	close(send)
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	log.Printf("live: viewer %s disconnected as %s", viewerID, connID)
}

// writer drains send onto the wire and pings on an interval, exactly the
// teacher hub's split between a dedicated writer goroutine and a reader (or,
// here, watch) loop owning the connection's lifetime.
func (h *Hub) writer(r *http.Request, conn *websocket.Conn, send <-chan string, done chan struct{}) {
	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()
	for {
		select {
		case rendering, ok := <-send:
			if !ok {
				return
			}
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(rendering)); err != nil {
				close(done)
				return
			}
		case <-ping.C:
			if err := conn.Ping(r.Context()); err != nil {
				close(done)
				return
			}
		case <-done:
			return
		}
	}
}

// watchLoop repeatedly calls board.Watch(viewerID), forwarding each
// resolution to send, until the request context is cancelled (client
// disconnect) or the writer goroutine signals it gave up on the connection.
func (h *Hub) watchLoop(r *http.Request, viewerID string, send chan<- string, done chan struct{}) {
	for {
		handle, err := h.board.Watch(viewerID)
		if err != nil {
			return
		}

		select {
		case rendering, ok := <-handle.C():
			if !ok {
				return
			}
			select {
			case send <- rendering:
			case <-done:
				return
			}
		case <-r.Context().Done():
			handle.Cancel()
			return
		case <-done:
			handle.Cancel()
			return
		}
	}
}
