package websocket

import (
	"testing"
	"time"
)

func newTestListener(hub *Hub, token string) *Listener {
	return &Listener{hub: hub, send: make(chan []byte, 32), Token: token}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestHubSendToListener(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	if hub.Send("no-such-token", "X1") {
		t.Error("Send should fail with no listener")
	}

	l := newTestListener(hub, "tok-1")
	hub.register <- l
	waitFor(t, func() bool { return hub.Listening("tok-1") })

	if !hub.Send("tok-1", "X1") {
		t.Fatal("Send should succeed with a listener")
	}
	select {
	case got := <-l.send:
		if string(got) != "X1" {
			t.Errorf("payload = %q, want X1", got)
		}
	case <-time.After(time.Second):
		t.Fatal("payload never delivered")
	}
}

func TestHubReplacesListener(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestListener(hub, "tok-2")
	hub.register <- first
	waitFor(t, func() bool { return hub.Listening("tok-2") })

	second := newTestListener(hub, "tok-2")
	hub.register <- second
	waitFor(t, func() bool {
		select {
		case _, ok := <-first.send:
			return !ok
		default:
			return false
		}
	})

	if !hub.Send("tok-2", "Y2") {
		t.Fatal("Send should reach the replacement listener")
	}
	if got := <-second.send; string(got) != "Y2" {
		t.Errorf("payload = %q, want Y2", got)
	}

	// Unregistering the stale listener must not evict the replacement.
	hub.unregister <- first
	time.Sleep(20 * time.Millisecond)
	if !hub.Listening("tok-2") {
		t.Error("replacement listener should still be registered")
	}
}

func TestHubSendDuringReplace(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	hub.register <- newTestListener(hub, "tok-race")
	waitFor(t, func() bool { return hub.Listening("tok-race") })

	// Hammer Send while listeners are being replaced; a send racing the
	// close of an evicted listener's channel would panic here.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.register <- newTestListener(hub, "tok-race")
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
			hub.Send("tok-race", "R1")
		}
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	l := newTestListener(hub, "tok-3")
	hub.register <- l
	waitFor(t, func() bool { return hub.Listening("tok-3") })

	hub.unregister <- l
	waitFor(t, func() bool { return !hub.Listening("tok-3") })

	if hub.Send("tok-3", "Z3") {
		t.Error("Send should fail after unregister")
	}
}
