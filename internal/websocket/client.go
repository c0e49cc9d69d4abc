package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Scanned payloads are short strings; anything bigger is not a scan.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Desktop pages connect from whatever origin serves the app.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Listener is one desktop session's websocket, the receiving end of the
// relay. Payloads flow one way, relay to page; the read side only services
// pongs and close frames.
type Listener struct {
	hub *Hub

	conn *websocket.Conn

	// Buffered channel of outbound payloads.
	send chan []byte

	// Token is the pairing-session token this listener subscribed to.
	Token string
}

// readPump drains the connection so control frames are processed, and
// unregisters the listener when the peer goes away.
func (l *Listener) readPump() {
	defer func() {
		l.hub.unregister <- l
		l.conn.Close()
	}()
	l.conn.SetReadLimit(maxMessageSize)
	l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error { l.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := l.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS error: %v", err)
			}
			break
		}
	}
}

// writePump pumps payloads from the hub to the websocket connection.
func (l *Listener) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		l.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-l.send:
			l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel (replaced by a newer listener).
				l.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := l.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades a desktop session's request and subscribes it to the
// given pairing token.
func ServeWs(hub *Hub, token string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	l := &Listener{hub: hub, conn: conn, send: make(chan []byte, 32), Token: token}
	l.hub.register <- l

	go l.writePump()
	go l.readPump()
}
