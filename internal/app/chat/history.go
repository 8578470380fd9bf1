/*
Package chat contains the core connection and session coordination logic.

This file defines the History log: the append-only, ordered record of chat
messages. Its order is the single global broadcast order and it is replayed
in full to every newly registered connection.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"openchat/internal/pkg/logx"
	"openchat/internal/store"
)

// History is the append-only message log, persisted after every append.
type History struct {
	mu       sync.Mutex
	messages []ChatMessage
	store    store.Store
	logger   zerolog.Logger
}

// NewHistory creates a History persisting through st.
func NewHistory(st store.Store) *History {
	return &History{
		store:  st,
		logger: logx.Logger().With().Str("component", "history").Logger(),
	}
}

// Load populates the log from the persistence collaborator. Called once at
// process start.
func (h *History) Load() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Load(&h.messages); err != nil {
		h.logger.Error().Err(err).Msg("Failed to load chat history. Starting empty.")
		return
	}

	h.logger.Info().Int("messages", len(h.messages)).Msg("Chat history loaded.")
}

// Append records msg and persists the log. Appends are serialized, so the
// stored order is deterministic; a save failure is logged and the append
// still counts.
func (h *History) Append(msg ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)

	if err := h.store.Save(h.messages); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist chat history after append.")
	}
}

// Snapshot returns a copy of the log for replay.
func (h *History) Snapshot() []ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make([]ChatMessage, len(h.messages))
	copy(snapshot, h.messages)
	return snapshot
}

// Len reports the number of recorded messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.messages)
}

// Flush persists the current log. Called once during graceful shutdown.
func (h *History) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Save(h.messages); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist chat history on shutdown.")
	}
}
