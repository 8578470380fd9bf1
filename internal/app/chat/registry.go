/*
Package chat contains the core connection and session coordination logic.

This file defines the Registry, which owns the set of live connections. It
enforces at most one connection per session token, runs the takeover
protocol when a token is claimed again, and performs best-effort broadcast
fan-out to a stable snapshot of the live set.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"openchat/internal/pkg/logx"
)

// Presence is the read-only view of one live connection.
type Presence struct {
	PermanentUserID string `json:"permanent_user_id"`
	Name            string `json:"name"`
}

// Registry tracks the single live connection per session token.
type Registry struct {
	// mu serializes every install and remove on conns so the one-per-token
	// invariant and the join/leave counts are never observed torn.
	mu    sync.RWMutex
	conns map[string]*Conn // session token -> live connection

	// publishMu serializes append-then-broadcast of chat messages so the
	// history order equals the broadcast order at every connection.
	publishMu sync.Mutex

	history *History
	logger  zerolog.Logger
}

// NewRegistry creates a Registry replaying from history.
func NewRegistry(history *History) *Registry {
	return &Registry{
		conns:   make(map[string]*Conn),
		history: history,
		logger:  logx.Logger().With().Str("component", "registry").Logger(),
	}
}

// Register installs a new connection for token, evicting any existing one
// for the same token first. The new connection fully replaces the old
// entry before the join broadcast is computed; the evicted connection is
// notified and closed asynchronously so an unresponsive peer cannot stall
// registration. The full history is replayed to the new connection only,
// then a player_joined event carrying the post-install count is broadcast.
func (r *Registry) Register(token, permanentID, name string, transport Transport) *Conn {
	conn := newConn(r, token, permanentID, name, transport)

	r.mu.Lock()
	old := r.conns[token]
	r.conns[token] = conn
	total := len(r.conns)
	r.mu.Unlock()

	if old != nil {
		r.logger.Warn().
			Str("old_instance_id", old.instanceID).
			Str("new_instance_id", conn.instanceID).
			Msg("Session token already connected. Replacing old connection.")

		go r.evict(old)
	}

	go conn.writeLoop()

	if err := conn.enqueue(HistoryEvent(r.history.Snapshot())); err != nil {
		conn.logger.Warn().Err(err).Msg("Failed to queue history replay.")
	}

	r.Broadcast(JoinedEvent(permanentID, name, total))

	conn.logger.Info().Int("total_players", total).Msg("Connection registered.")
	return conn
}

// evict delivers the termination notice to a replaced connection and
// closes it with a policy-violation code. Runs off the registration path;
// the old connection's own lifecycle handler observes the close and its
// unregister becomes a stale no-op.
func (r *Registry) evict(old *Conn) {
	if err := old.transport.Send(SessionTerminatedEvent()); err != nil {
		old.logger.Warn().Err(err).Msg("Could not deliver session_terminated notice to replaced connection.")
	}

	old.shutdown(ClosePolicyViolation, "session replaced by a new connection")
}

// Unregister removes conn from the registry, but only while it is still
// the installed connection for its token. A stale instance (already
// replaced by a takeover, or already removed) is a silent no-op, which
// keeps repeated teardown paths from double-broadcasting player_left.
func (r *Registry) Unregister(conn *Conn) {
	r.mu.Lock()
	current, ok := r.conns[conn.token]
	if !ok || current.instanceID != conn.instanceID {
		r.mu.Unlock()
		conn.logger.Debug().Msg("Unregister skipped for stale connection.")
		return
	}

	delete(r.conns, conn.token)
	remaining := len(r.conns)
	r.mu.Unlock()

	conn.shutdown(CloseNormalClosure, "disconnected")

	conn.logger.Info().Int("total_players", remaining).Msg("Connection unregistered.")
	r.Broadcast(LeftEvent(conn.permanentID, conn.name, remaining))
}

// DropSession evicts the live connection bound to token, if any. This is
// the single entry point the login path uses when a fresh login supersedes
// a session that still has a connection: the old client gets exactly one
// session_terminated event, its transport is closed with a policy
// violation, and a player_left is broadcast with the post-removal count.
func (r *Registry) DropSession(token string) {
	r.mu.Lock()
	conn, ok := r.conns[token]
	if ok {
		delete(r.conns, token)
	}
	remaining := len(r.conns)
	r.mu.Unlock()

	if !ok {
		return
	}

	if err := conn.transport.Send(SessionTerminatedEvent()); err != nil {
		conn.logger.Warn().Err(err).Msg("Could not deliver session_terminated notice.")
	}

	conn.shutdown(ClosePolicyViolation, "session terminated by a new login")

	conn.logger.Info().Msg("Connection dropped by session takeover.")
	r.Broadcast(LeftEvent(conn.permanentID, conn.name, remaining))
}

// Publish appends msg to the history log and broadcasts it. The two steps
// are serialized as a unit, so the log order is the order every connection
// observes.
func (r *Registry) Publish(msg ChatMessage) {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	r.history.Append(msg)
	r.Broadcast(MessageEvent(msg))
}

// Broadcast delivers ev to every currently registered connection. Fan-out
// iterates a stable snapshot of the live set; a delivery failure drops
// only the failed connection (through its own Unregister) and never aborts
// delivery to the rest or surfaces to the caller.
func (r *Registry) Broadcast(ev Event) {
	r.mu.RLock()
	recipients := make([]*Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		recipients = append(recipients, conn)
	}
	r.mu.RUnlock()

	for _, conn := range recipients {
		if err := conn.enqueue(ev); err != nil {
			conn.logger.Warn().Err(err).Msg("Broadcast delivery failed. Unregistering connection.")
			r.Unregister(conn)
		}
	}
}

// Snapshot returns the presence view of the currently registered
// connections.
func (r *Registry) Snapshot() []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]Presence, 0, len(r.conns))
	for _, conn := range r.conns {
		players = append(players, Presence{
			PermanentUserID: conn.permanentID,
			Name:            conn.name,
		})
	}

	return players
}

// Count reports the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
