package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTransport records outbound events and feeds scripted payloads to
// Receive.
type fakeTransport struct {
	mu          sync.Mutex
	events      []Event
	sendErr     error
	closed      bool
	closeCode   int
	closeReason string

	recv chan recvResult
}

type recvResult struct {
	payload string
	err     error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		recv: make(chan recvResult, 16),
	}
}

func (f *fakeTransport) Send(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}

	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTransport) Receive() (string, error) {
	r := <-f.recv
	return r.payload, r.err
}

func (f *fakeTransport) Close(code int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		f.closeCode = code
		f.closeReason = reason
	}
	return nil
}

func (f *fakeTransport) failSends(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

func (f *fakeTransport) pushPayload(payload string) {
	f.recv <- recvResult{payload: payload}
}

func (f *fakeTransport) pushError(err error) {
	f.recv <- recvResult{err: err}
}

func (f *fakeTransport) eventsOf(typ EventType) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Event
	for _, ev := range f.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeTransport) allEvents() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeTransport) closedWith() (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed, f.closeCode
}

// waitEventsOf blocks until at least n events of the given type arrived.
func (f *fakeTransport) waitEventsOf(t *testing.T, typ EventType, n int) []Event {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(f.eventsOf(typ)) >= n
	}, 2*time.Second, 5*time.Millisecond, "expected %d %q events, got %d", n, typ, len(f.eventsOf(typ)))

	return f.eventsOf(typ)
}

// memStore is an in-memory persistence collaborator counting saves.
type memStore struct {
	mu    sync.Mutex
	saves int
}

func (s *memStore) Load(dst any) error {
	return nil
}

func (s *memStore) Save(src any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func newTestRegistry() *Registry {
	return NewRegistry(NewHistory(&memStore{}))
}
