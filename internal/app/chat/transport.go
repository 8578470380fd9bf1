/*
Package chat contains the core connection and session coordination logic.

This file defines the Transport collaborator contract presented to a
connection, together with the close codes and sentinel errors shared by its
implementations. The handshake (accept) happens before a Transport exists:
for websockets it is the HTTP upgrade performed by the handler.
*/
package chat

import "errors"

// Websocket close codes used by the registry and lifecycle handler.
const (
	// CloseNormalClosure is the ordinary server-side close.
	CloseNormalClosure = 1000

	// ClosePolicyViolation closes connections rejected for an invalid
	// session or evicted by a session takeover.
	ClosePolicyViolation = 1008

	// CloseInternalError closes connections torn down by a server fault.
	CloseInternalError = 1011
)

var (
	// ErrTransportClosed is returned by Receive when the peer disconnected
	// or the transport was closed locally. It is the connection's normal
	// termination signal, not a fault.
	ErrTransportClosed = errors.New("transport closed")

	// ErrSendQueueFull is returned when a connection's outbound queue
	// rejects an event. Treated as connection death, never retried.
	ErrSendQueueFull = errors.New("connection send queue full")
)

// Transport is one live transport-level channel bound to a connection.
// Implementations must serialize concurrent Send calls internally.
type Transport interface {
	// Send delivers one structured event. The attempt is bounded; a
	// failure means the connection is dead.
	Send(ev Event) error

	// Receive blocks for the next inbound text payload. It returns
	// ErrTransportClosed on disconnect and any other error on protocol or
	// I/O faults.
	Receive() (string, error)

	// Close tears the channel down with a close code and reason. Safe to
	// call more than once.
	Close(code int, reason string) error
}
