/*
Package store provides the persistence collaborator for the server's three
tables (users, sessions, chat history).

Each table is one JSON file. Load tolerates a missing or corrupt file by
leaving the destination at its zero value, and Save rewrites the whole
table. Persistence is best-effort: the in-memory tables stay authoritative
for the lifetime of the process, so callers log Save failures instead of
propagating them.
*/
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"openchat/internal/pkg/logx"
)

// Store is the narrow contract the core components persist through.
type Store interface {
	// Load reads the table into dst. A missing or unreadable source is not
	// an error; dst is simply left untouched.
	Load(dst any) error

	// Save writes the full table.
	Save(src any) error
}

// FileStore persists one table as an indented JSON file.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a FileStore for the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: logx.Logger().With().Str("component", "store").Str("path", path).Logger(),
	}
}

// Load reads and decodes the table file into dst. Missing files and decode
// failures leave dst untouched and return nil; the server starts with an
// empty table in both cases.
func (f *FileStore) Load(dst any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Info().Msg("Table file not found. Starting with an empty table.")
			return nil
		}
		return fmt.Errorf("failed to read table file: %w", err)
	}

	if len(data) == 0 {
		f.logger.Info().Msg("Table file is empty. Starting with an empty table.")
		return nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		f.logger.Warn().Err(err).Msg("Table file is corrupt. Starting with an empty table.")
		return nil
	}

	f.logger.Info().Msg("Table loaded.")
	return nil
}

// Save writes the full table to disk, creating the parent directory when
// needed. The file is written via a temporary sibling and renamed into
// place so a crash mid-write cannot truncate the previous table.
func (f *FileStore) Save(src any) error {
	data, err := json.MarshalIndent(src, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace table file: %w", err)
	}

	return nil
}

// Remove deletes the table file. Used for the session table on shutdown;
// a missing file is not an error.
func (f *FileStore) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove table file: %w", err)
	}
	return nil
}
