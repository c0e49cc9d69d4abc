package scanner

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Bridge connection states.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusLinked       Status = "linked"
)

// LinkedSentinel is the reserved in-band payload a mobile device pushes once
// its capture page has loaded. It flips the bridge to linked and is never
// forwarded as a scan.
const LinkedSentinel = "__LINKED__"

// Bridge owns the desktop side of the relay: one websocket per pairing
// token, automatic fixed-delay reconnection, and delivery of every inbound
// payload to the current scan callback.
type Bridge struct {
	wsURL  string
	delay  time.Duration
	dialer *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	status   Status
	closed   bool
	retry    *time.Timer
	onScan   func(string)
	onStatus func(Status)
}

// NewBridge prepares a bridge for the relay at baseURL ("http://host:8000")
// and the given pairing token. The http scheme is rewritten to its websocket
// counterpart. Call Start to open the connection.
func NewBridge(baseURL, token string, reconnectDelay time.Duration) (*Bridge, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay base URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	u.Path = "/api/v1/scanner/ws/" + token

	return &Bridge{
		wsURL:  u.String(),
		delay:  reconnectDelay,
		dialer: websocket.DefaultDialer,
		status: StatusDisconnected,
	}, nil
}

// SetOnScan swaps the scan callback. The connection is untouched; the read
// loop always delivers to whichever callback is current.
func (b *Bridge) SetOnScan(fn func(string)) {
	b.mu.Lock()
	b.onScan = fn
	b.mu.Unlock()
}

// SetOnStatus registers a callback invoked on every status transition.
func (b *Bridge) SetOnStatus(fn func(Status)) {
	b.mu.Lock()
	b.onStatus = fn
	b.mu.Unlock()
}

// Status returns the current connection state.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Start opens the connection. Returns immediately; progress is reported
// through the status callback.
func (b *Bridge) Start() {
	go b.connect()
}

// Close tears the bridge down: the socket is closed, any pending reconnect
// is canceled and no further scan callbacks are delivered.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if b.retry != nil {
		b.retry.Stop()
		b.retry = nil
	}
	conn := b.conn
	b.conn = nil
	b.status = StatusDisconnected
	b.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (b *Bridge) setStatus(s Status) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.status = s
	cb := b.onStatus
	b.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// linkOnce flips the bridge to linked. Mobile pages re-send the sentinel on
// every reload; only the first one per link-up notifies.
func (b *Bridge) linkOnce() {
	b.mu.Lock()
	if b.closed || b.status == StatusLinked {
		b.mu.Unlock()
		return
	}
	b.status = StatusLinked
	cb := b.onStatus
	b.mu.Unlock()
	if cb != nil {
		cb(StatusLinked)
	}
}

func (b *Bridge) connect() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.setStatus(StatusConnecting)

	conn, resp, err := b.dialer.Dial(b.wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		b.status = StatusDisconnected
		cb := b.onStatus
		b.scheduleReconnectLocked()
		b.mu.Unlock()
		if cb != nil {
			cb(StatusDisconnected)
		}
		return
	}
	b.conn = conn
	b.mu.Unlock()

	b.setStatus(StatusConnected)
	go b.readLoop(conn)
}

// scheduleReconnectLocked arms exactly one retry timer; a previous pending
// timer is replaced. Caller holds b.mu.
func (b *Bridge) scheduleReconnectLocked() {
	if b.retry != nil {
		b.retry.Stop()
	}
	b.retry = time.AfterFunc(b.delay, func() {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()
		b.connect()
	})
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}

		payload := string(msg)
		if payload == LinkedSentinel {
			b.linkOnce()
			continue
		}

		b.mu.Lock()
		closed := b.closed
		cb := b.onScan
		b.mu.Unlock()
		if closed {
			return
		}
		if cb != nil {
			cb(payload)
		}
	}

	conn.Close()

	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.status = StatusDisconnected
	cb := b.onStatus
	b.scheduleReconnectLocked()
	b.mu.Unlock()
	if cb != nil {
		cb(StatusDisconnected)
	}
}
