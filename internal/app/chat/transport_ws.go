/*
Package chat contains the core connection and session coordination logic.

This file implements Transport over a gorilla websocket connection. The
adapter owns everything websocket-specific: write serialization and
deadlines, the read limit, and the ping/pong heartbeat. Above this type the
core only sees Send/Receive/Close.
*/
package chat

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// timeout for a single write to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong before the read deadline expires.
	pongWait = 60 * time.Second

	// frequency of outgoing Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound message.
	maxMessageSize = 8192
)

// WSTransport adapts a *websocket.Conn to the Transport contract.
type WSTransport struct {
	conn *websocket.Conn

	// writeMu serializes frame writes; gorilla allows one writer at a time.
	writeMu sync.Mutex

	pingStop chan struct{}
	stopOnce sync.Once
}

// NewWSTransport wraps an upgraded websocket connection. It installs the
// read limit and pong handling and starts the heartbeat goroutine.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	t := &WSTransport{
		conn:     conn,
		pingStop: make(chan struct{}),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go t.pingLoop()

	return t
}

// pingLoop keeps the connection's heartbeat. It stops on the first failed
// ping; the stalled peer then surfaces as a Receive error when the read
// deadline expires.
func (t *WSTransport) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.writeMu.Lock()
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := t.conn.WriteMessage(websocket.PingMessage, nil)
			t.writeMu.Unlock()

			if err != nil {
				return
			}

		case <-t.pingStop:
			return
		}
	}
}

// Send marshals ev and writes it as one text frame within the write
// deadline.
func (t *WSTransport) Send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks for the next text payload. Close frames from the peer and
// a locally closed socket both map to ErrTransportClosed.
func (t *WSTransport) Receive() (string, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) || errors.Is(err, net.ErrClosed) {
			return "", ErrTransportClosed
		}
		return "", err
	}

	return string(data), nil
}

// Close sends a close frame with the given code and reason (best effort)
// and closes the underlying connection. The heartbeat stops first so it
// cannot race the close frame.
func (t *WSTransport) Close(code int, reason string) error {
	t.stopOnce.Do(func() {
		close(t.pingStop)
	})

	t.writeMu.Lock()
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	t.writeMu.Unlock()

	return t.conn.Close()
}
