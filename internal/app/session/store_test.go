package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openchat/internal/pkg/randx"
	"openchat/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(store.NewFileStore(filepath.Join(t.TempDir(), "active_sessions.json")))
}

func TestCreateResolveInvalidate(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	token, prev, err := s.Create("u1")
	require.NoError(t, err)
	assert.Empty(t, prev)
	assert.Len(t, token, randx.SessionTokenLength)

	id, ok := s.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	s.Invalidate(token)
	_, ok = s.Resolve(token)
	assert.False(t, ok)

	// invalidating an absent token is a silent no-op
	s.Invalidate(token)
	s.Invalidate("never-existed")
}

func TestCreateSupersedesPriorTokenForSameIdentity(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	first, _, err := s.Create("u1")
	require.NoError(t, err)

	second, prev, err := s.Create("u1")
	require.NoError(t, err)

	assert.Equal(t, first, prev, "Create must report the superseded token")
	assert.NotEqual(t, first, second)

	_, ok := s.Resolve(first)
	assert.False(t, ok, "the prior token must be invalidated")

	id, ok := s.Resolve(second)
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	assert.Equal(t, 1, s.Active(), "at most one active token per identity")
}

func TestTokensAreDistinctAcrossIdentities(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	seen := map[string]bool{}
	for i, id := range []string{"u1", "u2", "u3", "u4"} {
		token, _, err := s.Create(id)
		require.NoError(t, err)
		assert.False(t, seen[token], "token %d collided", i)
		seen[token] = true
	}

	assert.Equal(t, 4, s.Active())
}

func TestPersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "active_sessions.json")
	fileStore := store.NewFileStore(path)

	s := NewStore(fileStore)
	token, _, err := s.Create("u1")
	require.NoError(t, err)

	// a second store over the same file sees the session (crash recovery)
	reloaded := NewStore(store.NewFileStore(path))
	reloaded.Load()

	id, ok := reloaded.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestClearEmptiesTheTable(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	token, _, err := s.Create("u1")
	require.NoError(t, err)

	s.Clear()

	_, ok := s.Resolve(token)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Active())
}
