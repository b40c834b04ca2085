package eventbus

import (
	"testing"
	"time"
)

func TestPublishOnDisconnectedBusIsANoOp(t *testing.T) {
	b := &Bus{}
	// Must not panic even though there is no underlying connection.
	b.PublishReset("board-1", time.Unix(0, 0))
	b.PublishKeepalive("board-1", time.Unix(0, 0))
	b.Close()
}

func TestConnectToUnreachableBrokerDegradesGracefully(t *testing.T) {
	b := Connect("nats://127.0.0.1:1")
	if b == nil {
		t.Fatal("Connect must never return nil")
	}
	b.PublishReset("board-1", time.Now())
	b.Close()
}
