package hub

import (
	"testing"
	"time"
)

// receive waits briefly for the next message on c.
func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}, false
	}
}

func TestHubBroadcast(t *testing.T) {
	h := New("test")
	go h.Run()
	defer h.Stop()

	a, b := newClient(h, nil), newClient(h, nil)
	h.register <- a
	h.register <- b

	if err := h.BroadcastJSON(map[string]int{"score": 3}); err != nil {
		t.Fatalf("BroadcastJSON() error: %v", err)
	}

	for _, c := range []*Client{a, b} {
		msg, ok := receive(t, c)
		if !ok {
			t.Fatal("client channel closed")
		}
		if msg.Type != JSONMessage {
			t.Errorf("message type = %v, want JSONMessage", msg.Type)
		}
		if string(msg.Data) != `{"score":3}` {
			t.Errorf("message data = %s, want {\"score\":3}", msg.Data)
		}
	}

	if got := h.ClientCount(); got != 2 {
		t.Errorf("ClientCount() = %d, want 2", got)
	}
}

func TestHubReplaysLastMessage(t *testing.T) {
	h := New("test")
	go h.Run()
	defer h.Stop()

	early := newClient(h, nil)
	h.register <- early
	h.BroadcastBinary([]byte{0xff, 0xd8})
	receive(t, early)

	late := newClient(h, nil)
	h.register <- late
	msg, ok := receive(t, late)
	if !ok {
		t.Fatal("late client channel closed")
	}
	if msg.Type != BinaryMessage || len(msg.Data) != 2 {
		t.Errorf("replayed message = %+v, want the last binary frame", msg)
	}
}

func TestHubUnregister(t *testing.T) {
	h := New("test")
	go h.Run()
	defer h.Stop()

	c := newClient(h, nil)
	h.register <- c
	h.unregister <- c

	if _, ok := receive(t, c); ok {
		t.Error("client channel should be closed after unregister")
	}
	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := New("test")
	go h.Run()
	defer h.Stop()

	slow := newClient(h, nil)
	h.register <- slow

	// Fill the client's buffer, then one more to overflow it.
	for i := 0; i <= sendBuffer; i++ {
		h.Broadcast(NewJSONMessage([]byte(`{}`)))
	}

	drained := 0
	for range slow.send {
		drained++
	}
	if drained != sendBuffer {
		t.Errorf("slow client received %d messages before close, want %d", drained, sendBuffer)
	}
}

func TestHubStopClosesClients(t *testing.T) {
	h := New("test")
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	c := newClient(h, nil)
	h.register <- c
	h.Stop()
	h.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if _, ok := receive(t, c); ok {
		t.Error("client channel should be closed after Stop")
	}
}

func TestNewClientIDsAreUnique(t *testing.T) {
	h := New("test")
	a, b := newClient(h, nil), newClient(h, nil)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("client ids %q and %q should be unique and non-empty", a.ID(), b.ID())
	}
}
