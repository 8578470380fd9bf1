/*
Package user implements the user directory: the mapping between usernames
and permanent user identities, with credential records.

A permanent identity is assigned once at registration and never destroyed
in-process. Credentials are compared by exact match; the missing password
hashing is a known gap inherited from the reference behavior, not a design
goal.
*/
package user

import (
	"sync"

	"github.com/rs/zerolog"

	"openchat/internal/pkg/errs"
	"openchat/internal/pkg/logx"
	"openchat/internal/pkg/randx"
	"openchat/internal/store"
)

// UnknownUserName is returned by DisplayName when an identity has no
// directory entry. Presentation must never fail on a missing user.
const UnknownUserName = "Unknown User"

// Record is one stored user entry, keyed by username in the table.
type Record struct {
	Password    string `json:"password"`
	PermanentID string `json:"permanent_id"`
}

// Directory owns the username-to-identity table.
type Directory struct {
	mu     sync.RWMutex
	users  map[string]Record
	store  store.Store
	logger zerolog.Logger
}

// NewDirectory creates a Directory persisting through st.
func NewDirectory(st store.Store) *Directory {
	return &Directory{
		users:  make(map[string]Record),
		store:  st,
		logger: logx.Logger().With().Str("component", "user_directory").Logger(),
	}
}

// Load populates the directory from the persistence collaborator.
// Called once at process start.
func (d *Directory) Load() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.store.Load(&d.users); err != nil {
		d.logger.Error().Err(err).Msg("Failed to load user table. Starting empty.")
		return
	}

	d.logger.Info().Int("users", len(d.users)).Msg("User table loaded.")
}

// Validate checks the username/password pair and returns the permanent
// identity on success.
func (d *Directory) Validate(username, password string) (string, *errs.CustomError) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	record, ok := d.users[username]
	if !ok {
		d.logger.Info().Str("username", username).Msg("Login rejected: user not found.")
		return "", errs.NewError(errs.ErrInvalidCredentials)
	}

	if record.Password != password {
		d.logger.Info().Str("username", username).Msg("Login rejected: password mismatch.")
		return "", errs.NewError(errs.ErrInvalidCredentials)
	}

	return record.PermanentID, nil
}

// Register allocates a permanent identity for a new username, stores the
// credential record, and persists the table. Fails when the username is
// already present; no state changes in that case.
func (d *Directory) Register(username, password string) (string, *errs.CustomError) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[username]; exists {
		d.logger.Warn().Str("username", username).Msg("Registration rejected: username already exists.")
		return "", errs.NewError(errs.ErrUserAlreadyExists)
	}

	permanentID := randx.UserID()
	d.users[username] = Record{
		Password:    password,
		PermanentID: permanentID,
	}

	if err := d.store.Save(d.users); err != nil {
		d.logger.Error().Err(err).Msg("Failed to persist user table after registration.")
	}

	d.logger.Info().
		Str("username", username).
		Str("permanent_id", permanentID).
		Msg("New user registered.")

	return permanentID, nil
}

// DisplayName resolves a permanent identity back to its username for
// presentation, falling back to UnknownUserName.
func (d *Directory) DisplayName(permanentID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for username, record := range d.users {
		if record.PermanentID == permanentID {
			return username
		}
	}

	return UnknownUserName
}
