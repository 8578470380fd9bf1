/*
Package chat contains the core connection and session coordination logic.

This file defines Conn, one live connection bound to a session token, and
its lifecycle: a buffered outbound queue drained by the write loop, and the
Active-state receive loop in Run. A Conn moves Validating -> Active ->
Closed with no retries; validation happens in the websocket handler before
the Conn exists.
*/
package chat

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"openchat/internal/pkg/logx"
	"openchat/internal/pkg/randx"
)

// sendQueueSize bounds the outbound event queue per connection.
const sendQueueSize = 256

// Conn represents one live connection. Successive connections reusing the
// same session token are told apart by instanceID, never by reference
// identity.
type Conn struct {
	// instanceID is process-unique for this connection instance.
	instanceID string

	// token is the session token this connection is bound to.
	token string

	// permanentID and name identify the user behind the session.
	permanentID string
	name        string

	transport Transport
	registry  *Registry

	// send queues outbound events for the write loop.
	send chan Event

	// done stops the write loop; closed exactly once by shutdown.
	done      chan struct{}
	closeOnce sync.Once

	logger zerolog.Logger
}

func newConn(registry *Registry, token, permanentID, name string, transport Transport) *Conn {
	instanceID := randx.ConnectionID()

	logger := logx.Logger().With().
		Str("component", "conn").
		Str("instance_id", instanceID).
		Str("permanent_id", permanentID).
		Logger()

	return &Conn{
		instanceID:  instanceID,
		token:       token,
		permanentID: permanentID,
		name:        name,
		transport:   transport,
		registry:    registry,
		send:        make(chan Event, sendQueueSize),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// InstanceID returns the process-unique id of this connection instance.
func (c *Conn) InstanceID() string {
	return c.instanceID
}

// PermanentID returns the permanent identity bound to this connection.
func (c *Conn) PermanentID() string {
	return c.permanentID
}

// Name returns the display name bound to this connection.
func (c *Conn) Name() string {
	return c.name
}

// enqueue queues ev for delivery. The attempt is bounded: a full queue or
// a closed connection rejects immediately and the caller treats the
// connection as dead.
func (c *Conn) enqueue(ev Event) error {
	select {
	case <-c.done:
		return ErrTransportClosed
	default:
	}

	select {
	case c.send <- ev:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// writeLoop drains the send queue into the transport. A send failure ends
// the connection; the registry removal happens through Unregister so the
// leave broadcast stays single-sourced.
func (c *Conn) writeLoop() {
	for {
		select {
		case ev := <-c.send:
			if err := c.transport.Send(ev); err != nil {
				c.logger.Warn().Err(err).Msg("Transport send failed. Dropping connection.")
				c.registry.Unregister(c)
				return
			}

		case <-c.done:
			return
		}
	}
}

// shutdown closes the transport exactly once and stops the write loop.
// It never touches the registry; callers decide whether a removal (and the
// accompanying leave broadcast) is warranted.
func (c *Conn) shutdown(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)

		if err := c.transport.Close(code, reason); err != nil {
			c.logger.Debug().Err(err).Msg("Transport close reported an error.")
		}
	})
}

// Run is the Active-state receive loop. It blocks on inbound payloads and
// relays non-empty messages into the history log and the broadcast fan-out
// until the transport closes or fails. On return the connection is
// unregistered; repeated teardown paths collapse into the registry's
// stale-instance guard, so "left" is never broadcast twice.
func (c *Conn) Run() {
	defer c.registry.Unregister(c)

	for {
		payload, err := c.transport.Receive()
		if err != nil {
			if errors.Is(err, ErrTransportClosed) {
				c.logger.Info().Msg("Client disconnected.")
				return
			}

			c.logger.Error().Err(err).Msg("Connection failed with a receive error.")

			// best effort: the transport may already be unusable
			if sendErr := c.transport.Send(ServerErrorEvent()); sendErr != nil {
				c.logger.Debug().Err(sendErr).Msg("Could not notify client of server error.")
			}

			c.registry.Unregister(c)
			c.registry.Broadcast(ConnectionErrorEvent(c.permanentID, c.name))
			return
		}

		text := strings.TrimSpace(payload)
		if text == "" {
			c.logger.Debug().Msg("Ignoring empty message.")
			continue
		}

		c.registry.Publish(ChatMessage{
			PermanentUserID: c.permanentID,
			Sender:          c.name,
			Text:            text,
			Timestamp:       time.Now().UnixMilli(),
		})
	}
}
