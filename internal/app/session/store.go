/*
Package session implements the session store: the mapping from opaque
session tokens to permanent user identities.

At most one token is current per identity; creating a new one invalidates
the previous token for the same identity. The table is persisted after
every mutation, and cleared (file removed) on graceful shutdown, so
sessions do not survive a restart except after a crash.
*/
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"openchat/internal/pkg/logx"
	"openchat/internal/pkg/randx"
	"openchat/internal/store"
)

// Store owns the token-to-identity table.
type Store struct {
	mu     sync.Mutex
	tokens map[string]string // token -> permanent user id
	store  store.Store
	logger zerolog.Logger
}

// NewStore creates a session Store persisting through st.
func NewStore(st store.Store) *Store {
	return &Store{
		tokens: make(map[string]string),
		store:  st,
		logger: logx.Logger().With().Str("component", "session_store").Logger(),
	}
}

// Load populates the store from the persistence collaborator. Called once
// at process start; restores sessions only after an unclean shutdown.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Load(&s.tokens); err != nil {
		s.logger.Error().Err(err).Msg("Failed to load session table. Starting empty.")
		return
	}

	s.logger.Info().Int("sessions", len(s.tokens)).Msg("Session table loaded.")
}

// Create installs a fresh token for permanentID and returns it together
// with the identity's prior token, if one was active. The prior token is
// invalidated before the new one is installed; the caller is responsible
// for evicting any live connection still bound to it.
func (s *Store) Create(permanentID string) (token string, prevToken string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for t, id := range s.tokens {
		if id == permanentID {
			prevToken = t
			break
		}
	}

	if prevToken != "" {
		delete(s.tokens, prevToken)
		s.logger.Info().
			Str("permanent_id", permanentID).
			Msg("Prior session invalidated by new login.")
	}

	// retry until the token misses the active set; collisions are
	// astronomically rare but the check is cheap
	for {
		token, err = randx.SessionToken()
		if err != nil {
			return "", "", err
		}
		if _, taken := s.tokens[token]; !taken {
			break
		}
	}

	s.tokens[token] = permanentID
	s.persistLocked()

	s.logger.Info().Str("permanent_id", permanentID).Msg("Session created.")
	return token, prevToken, nil
}

// Resolve looks up the identity for token without mutating the store.
func (s *Store) Resolve(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	return id, ok
}

// Invalidate removes token from the store. Idempotent: removing an absent
// token is a no-op and does not trigger a save.
func (s *Store) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token]; !ok {
		return
	}

	delete(s.tokens, token)
	s.persistLocked()
}

// Active returns the number of currently active sessions.
func (s *Store) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tokens)
}

// Clear wipes the table. Called on graceful shutdown before the session
// file is removed.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = make(map[string]string)
	s.logger.Info().Msg("Session table cleared.")
}

// persistLocked saves the table. Persistence failure is logged, not
// raised; in-memory state remains authoritative. Callers must hold mu.
func (s *Store) persistLocked() {
	if err := s.store.Save(s.tokens); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist session table.")
	}
}
