package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendKeepsArrivalOrderAndPersists(t *testing.T) {
	t.Parallel()

	st := &memStore{}
	h := NewHistory(st)

	h.Append(ChatMessage{Sender: "alice", Text: "first", Timestamp: 1})
	h.Append(ChatMessage{Sender: "bob", Text: "second", Timestamp: 2})
	h.Append(ChatMessage{Sender: "alice", Text: "third", Timestamp: 3})

	snapshot := h.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "first", snapshot[0].Text)
	assert.Equal(t, "second", snapshot[1].Text)
	assert.Equal(t, "third", snapshot[2].Text)

	assert.Equal(t, 3, st.saveCount(), "every append persists the log")
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	t.Parallel()

	h := NewHistory(&memStore{})
	h.Append(ChatMessage{Sender: "alice", Text: "original", Timestamp: 1})

	snapshot := h.Snapshot()
	snapshot[0].Text = "tampered"

	assert.Equal(t, "original", h.Snapshot()[0].Text)
}

func TestHistoryFlushPersists(t *testing.T) {
	t.Parallel()

	st := &memStore{}
	h := NewHistory(st)

	h.Append(ChatMessage{Sender: "alice", Text: "msg", Timestamp: 1})
	before := st.saveCount()

	h.Flush()
	assert.Equal(t, before+1, st.saveCount())
}
