// Package eventbus publishes best-effort board lifecycle notifications over
// NATS for anything outside the process that wants to observe reset and
// keepalive events (log shippers, a second instance's health probe). It is
// never in the path of a board.Board operation's correctness: a missing or
// unreachable broker degrades publishing to a no-op, never an error
// returned to a caller.
package eventbus

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectReset     = "memoryscramble.reset"
	SubjectKeepalive = "memoryscramble.keepalive"
)

// Bus wraps a NATS connection that may be nil, in which case every publish
// is a silent no-op. This lets cmd/server run unconditionally against a
// broker it did not manage to reach, per spec's "best-effort" framing for
// anything not load-bearing to Board correctness.
type Bus struct {
	conn *nats.Conn
}

// Connect dials url and returns a Bus wrapping the connection. If the dial
// fails, Connect logs the failure and returns a Bus with a nil connection
// rather than an error, since the event bus is a convenience, not a
// dependency any board operation needs to function.
func Connect(url string) *Bus {
	nc, err := nats.Connect(url,
		nats.Name("memoryscramble-server"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		log.Printf("eventbus: connect to %s failed, publishing will be a no-op: %v", url, err)
		return &Bus{}
	}
	return &Bus{conn: nc}
}

// Close releases the underlying connection, if any.
func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

type resetEvent struct {
	BoardID string `json:"board_id"`
	At      int64  `json:"at"`
}

// PublishReset notifies subscribers that boardID was just reset. at is the
// caller's own timestamp (the package does not call time.Now itself, so
// cmd/server controls and can test the wall-clock dependency).
func (b *Bus) PublishReset(boardID string, at time.Time) {
	b.publish(SubjectReset, resetEvent{BoardID: boardID, At: at.Unix()})
}

type keepaliveEvent struct {
	BoardID string `json:"board_id"`
	At      int64  `json:"at"`
}

// PublishKeepalive notifies subscribers that the server is still alive and
// serving boardID, for the scheduler's periodic heartbeat.
func (b *Bus) PublishKeepalive(boardID string, at time.Time) {
	b.publish(SubjectKeepalive, keepaliveEvent{BoardID: boardID, At: at.Unix()})
}

func (b *Bus) publish(subject string, payload any) {
	if b.conn == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("eventbus: marshal for %s failed: %v", subject, err)
		return
	}
	if err := b.conn.Publish(subject, data); err != nil {
		log.Printf("eventbus: publish to %s failed: %v", subject, err)
	}
}
