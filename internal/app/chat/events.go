/*
Package chat contains the core connection and session coordination logic:
the connection registry, the per-connection lifecycle, the message history
log, and the outbound event vocabulary.

This file defines the closed set of outbound event kinds and the
ChatMessage record. Events are serialized at the transport boundary; each
kind uses a fixed subset of the Event fields, built through the constructor
functions below.
*/
package chat

import "fmt"

// EventType discriminates the outbound event kinds.
type EventType string

const (
	// EventChatHistory replays the full message log to one connection.
	EventChatHistory EventType = "chat_history"

	// EventChatMessage carries one broadcast chat message.
	EventChatMessage EventType = "chat_message"

	// EventPlayerJoined announces a new live connection.
	EventPlayerJoined EventType = "player_joined"

	// EventPlayerLeft announces a removed live connection.
	EventPlayerLeft EventType = "player_left"

	// EventSessionTerminated tells a connection its session was superseded.
	EventSessionTerminated EventType = "session_terminated"

	// EventInvalidSession rejects a connection whose token did not resolve.
	EventInvalidSession EventType = "invalid_session"

	// EventServerError notifies one connection of an internal failure.
	EventServerError EventType = "server_error"

	// EventConnectionError announces that a named user's connection failed.
	EventConnectionError EventType = "connection_error"
)

// ChatMessage is one immutable entry of the message history log.
// Timestamp is Unix milliseconds, fixed when the message is appended.
type ChatMessage struct {
	PermanentUserID string `json:"permanent_user_id"`
	Sender          string `json:"sender"`
	Text            string `json:"text"`
	Timestamp       int64  `json:"timestamp"`
}

// Event is the single wire structure for all outbound events. Which fields
// are set depends on Type; unused fields are omitted from the payload.
type Event struct {
	Type EventType `json:"type"`

	// chat_message, player_joined, player_left, connection_error
	PermanentUserID string `json:"permanent_user_id,omitempty"`
	Name            string `json:"name,omitempty"`

	// chat_message
	Text      string `json:"text,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// player_joined, player_left: live connection count after the mutation
	TotalPlayers int `json:"total_players,omitempty"`

	// chat_history
	Messages []ChatMessage `json:"messages,omitempty"`

	// session_terminated, invalid_session, server_error, connection_error
	Message string `json:"message,omitempty"`
}

// HistoryEvent builds the replay event sent to a newly registered
// connection. The messages slice is included even when empty so the client
// can distinguish "no history" from a missing replay.
func HistoryEvent(messages []ChatMessage) Event {
	if messages == nil {
		messages = []ChatMessage{}
	}
	return Event{Type: EventChatHistory, Messages: messages}
}

// MessageEvent builds the broadcast event for one chat message.
func MessageEvent(m ChatMessage) Event {
	return Event{
		Type:            EventChatMessage,
		PermanentUserID: m.PermanentUserID,
		Name:            m.Sender,
		Text:            m.Text,
		Timestamp:       m.Timestamp,
	}
}

// JoinedEvent announces a registered connection with the post-install
// live-connection count.
func JoinedEvent(permanentID, name string, total int) Event {
	return Event{
		Type:            EventPlayerJoined,
		PermanentUserID: permanentID,
		Name:            name,
		TotalPlayers:    total,
	}
}

// LeftEvent announces a removed connection with the post-removal count.
func LeftEvent(permanentID, name string, total int) Event {
	return Event{
		Type:            EventPlayerLeft,
		PermanentUserID: permanentID,
		Name:            name,
		TotalPlayers:    total,
	}
}

// SessionTerminatedEvent is sent to a connection evicted by a newer login
// or reconnect for the same session.
func SessionTerminatedEvent() Event {
	return Event{
		Type:    EventSessionTerminated,
		Message: "Your session has been terminated due to a new login.",
	}
}

// InvalidSessionEvent is the structured rejection delivered before closing
// a connection whose session token did not resolve.
func InvalidSessionEvent() Event {
	return Event{
		Type:    EventInvalidSession,
		Message: "Invalid or expired session ID. Please log in again.",
	}
}

// ServerErrorEvent notifies the affected connection of an internal failure.
func ServerErrorEvent() Event {
	return Event{
		Type:    EventServerError,
		Message: "An unexpected server error occurred with your connection.",
	}
}

// ConnectionErrorEvent is broadcast when a registered connection fails with
// an error other than a plain disconnect.
func ConnectionErrorEvent(permanentID, name string) Event {
	return Event{
		Type:            EventConnectionError,
		PermanentUserID: permanentID,
		Name:            name,
		Message:         fmt.Sprintf("An error occurred with %s's connection.", name),
	}
}
