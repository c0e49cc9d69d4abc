package scanner

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// relayServer is a stub relay endpoint; handle receives each upgraded
// connection and dials counts connection attempts.
func relayServer(t *testing.T, dials *int32, handle func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(dials, 1)
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handle(conn)
	}))
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

type scanRecorder struct {
	mu    sync.Mutex
	scans []string
}

func (r *scanRecorder) record(payload string) {
	r.mu.Lock()
	r.scans = append(r.scans, payload)
	r.mu.Unlock()
}

func (r *scanRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scans...)
}

func TestBridgeForwardsScans(t *testing.T) {
	var dials int32
	srv := relayServer(t, &dials, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("CODE-1"))
		time.Sleep(200 * time.Millisecond)
		conn.Close()
	})
	defer srv.Close()

	b, err := NewBridge(srv.URL, "tok-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	rec := &scanRecorder{}
	b.SetOnScan(rec.record)
	b.Start()

	waitUntil(t, func() bool { return len(rec.snapshot()) == 1 })
	if got := rec.snapshot(); got[0] != "CODE-1" {
		t.Errorf("scan = %q, want CODE-1", got[0])
	}
}

func TestBridgeLinkedSentinelNotForwarded(t *testing.T) {
	var dials int32
	srv := relayServer(t, &dials, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(LinkedSentinel))
		conn.WriteMessage(websocket.TextMessage, []byte("CODE-2"))
		time.Sleep(200 * time.Millisecond)
		conn.Close()
	})
	defer srv.Close()

	b, err := NewBridge(srv.URL, "tok-2", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	rec := &scanRecorder{}
	b.SetOnScan(rec.record)
	b.Start()

	waitUntil(t, func() bool { return b.Status() == StatusLinked })
	waitUntil(t, func() bool { return len(rec.snapshot()) == 1 })

	if got := rec.snapshot(); got[0] != "CODE-2" {
		t.Errorf("scans = %v, sentinel must not be forwarded", got)
	}
}

func TestBridgeLinkNotifiesOnce(t *testing.T) {
	var dials int32
	srv := relayServer(t, &dials, func(conn *websocket.Conn) {
		// A page reload re-sends the sentinel over the same session.
		conn.WriteMessage(websocket.TextMessage, []byte(LinkedSentinel))
		conn.WriteMessage(websocket.TextMessage, []byte(LinkedSentinel))
		conn.WriteMessage(websocket.TextMessage, []byte("CODE-3"))
		time.Sleep(200 * time.Millisecond)
		conn.Close()
	})
	defer srv.Close()

	b, err := NewBridge(srv.URL, "tok-link", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	var mu sync.Mutex
	linked := 0
	b.SetOnStatus(func(s Status) {
		if s == StatusLinked {
			mu.Lock()
			linked++
			mu.Unlock()
		}
	})
	rec := &scanRecorder{}
	b.SetOnScan(rec.record)
	b.Start()

	waitUntil(t, func() bool { return len(rec.snapshot()) == 1 })

	mu.Lock()
	defer mu.Unlock()
	if linked != 1 {
		t.Errorf("linked notifications = %d, want 1", linked)
	}
}

func TestBridgeReconnects(t *testing.T) {
	var dials int32
	srv := relayServer(t, &dials, func(conn *websocket.Conn) {
		conn.Close()
	})
	defer srv.Close()

	b, err := NewBridge(srv.URL, "tok-3", 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	var mu sync.Mutex
	var transitions []Status
	b.SetOnStatus(func(s Status) {
		mu.Lock()
		transitions = append(transitions, s)
		mu.Unlock()
	})
	b.Start()

	waitUntil(t, func() bool { return atomic.LoadInt32(&dials) >= 2 })

	mu.Lock()
	defer mu.Unlock()
	sawDrop := false
	for i := 0; i+1 < len(transitions); i++ {
		if transitions[i] == StatusDisconnected && transitions[i+1] == StatusConnecting {
			sawDrop = true
		}
	}
	if !sawDrop {
		t.Errorf("transitions = %v, want disconnected followed by connecting", transitions)
	}
}

func TestBridgeCloseSuppressesReconnect(t *testing.T) {
	var dials int32
	srv := relayServer(t, &dials, func(conn *websocket.Conn) {
		conn.Close()
	})
	defer srv.Close()

	b, err := NewBridge(srv.URL, "tok-4", 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	b.Start()

	waitUntil(t, func() bool { return atomic.LoadInt32(&dials) >= 1 })
	b.Close()

	time.Sleep(300 * time.Millisecond)
	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Errorf("dials after Close = %d, want 1", n)
	}
	if b.Status() != StatusDisconnected {
		t.Errorf("status after Close = %s", b.Status())
	}
}

func TestBridgeCallbackSwapKeepsConnection(t *testing.T) {
	var dials int32
	release := make(chan string)
	srv := relayServer(t, &dials, func(conn *websocket.Conn) {
		for payload := range release {
			conn.WriteMessage(websocket.TextMessage, []byte(payload))
		}
		conn.Close()
	})
	defer srv.Close()
	defer close(release)

	b, err := NewBridge(srv.URL, "tok-5", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	first := &scanRecorder{}
	second := &scanRecorder{}
	b.SetOnScan(first.record)
	b.Start()

	waitUntil(t, func() bool { return b.Status() == StatusConnected })
	release <- "CODE-A"
	waitUntil(t, func() bool { return len(first.snapshot()) == 1 })

	// Swapping the callback must not reopen the socket.
	b.SetOnScan(second.record)
	release <- "CODE-B"
	waitUntil(t, func() bool { return len(second.snapshot()) == 1 })

	if got := second.snapshot(); got[0] != "CODE-B" {
		t.Errorf("second callback got %v", got)
	}
	if len(first.snapshot()) != 1 {
		t.Error("old callback must not receive further scans")
	}
	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Errorf("dials = %d, callback swap must not reconnect", n)
	}
}

func TestBridgeRejectsBadScheme(t *testing.T) {
	if _, err := NewBridge("ftp://relay", "tok", time.Second); err == nil {
		t.Error("ftp scheme should be rejected")
	}
}
