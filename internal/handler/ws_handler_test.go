package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openchat/internal/app/chat"
)

func wsURL(server *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if token != "" {
		u += "?session_id=" + token
	}
	return u
}

func dialWS(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) chat.Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event chat.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

// readEventOf skips over unrelated broadcasts until an event of the wanted
// kind arrives.
func readEventOf(t *testing.T, conn *websocket.Conn, kind chat.EventType) chat.Event {
	t.Helper()

	for i := 0; i < 10; i++ {
		event := readEvent(t, conn)
		if event.Type == kind {
			return event
		}
	}
	t.Fatalf("no %s event arrived", kind)
	return chat.Event{}
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)
		assert.Equal(t, code, closeErr.Code)
		return
	}
}

func registerUser(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()

	status, env := doJSON(t, server.Config.Handler, http.MethodPost, "/api/auth/register",
		`{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, status)
	return env.Data["session_id"].(string)
}

func TestWebSocketInvalidSessionIsRejectedAfterHandshake(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(Router(newTestDeps(t)))
	defer server.Close()

	conn := dialWS(t, server, "not-a-real-token")

	event := readEvent(t, conn)
	assert.Equal(t, chat.EventInvalidSession, event.Type)
	assert.NotEmpty(t, event.Message)

	expectClose(t, conn, chat.ClosePolicyViolation)
}

func TestWebSocketJoinReplaysHistoryThenAnnounces(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t)
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	token := registerUser(t, server, "alice", "secret")
	conn := dialWS(t, server, token)

	history := readEvent(t, conn)
	require.Equal(t, chat.EventChatHistory, history.Type)
	assert.NotNil(t, history.Messages)
	assert.Empty(t, history.Messages)

	joined := readEvent(t, conn)
	require.Equal(t, chat.EventPlayerJoined, joined.Type)
	assert.Equal(t, "alice", joined.Name)
	assert.Equal(t, 1, joined.TotalPlayers)
}

func TestWebSocketMessageRoundTrip(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t)
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	aliceToken := registerUser(t, server, "alice", "secret")
	bobToken := registerUser(t, server, "bob", "hunter2")

	alice := dialWS(t, server, aliceToken)
	readEventOf(t, alice, chat.EventPlayerJoined)

	bob := dialWS(t, server, bobToken)
	readEventOf(t, bob, chat.EventPlayerJoined)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("hello bob")))

	for _, conn := range []*websocket.Conn{alice, bob} {
		event := readEventOf(t, conn, chat.EventChatMessage)
		assert.Equal(t, "alice", event.Name)
		assert.Equal(t, "hello bob", event.Text)
		assert.NotZero(t, event.Timestamp)
	}

	// a later join replays the message from the log
	secondToken := registerUser(t, server, "carol", "pw")
	carol := dialWS(t, server, secondToken)

	history := readEventOf(t, carol, chat.EventChatHistory)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hello bob", history.Messages[0].Text)
	assert.Equal(t, "alice", history.Messages[0].Sender)
}

func TestWebSocketLoginTerminatesLiveConnection(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t)
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	token := registerUser(t, server, "alice", "secret")
	first := dialWS(t, server, token)
	readEventOf(t, first, chat.EventPlayerJoined)

	status, env := doJSON(t, server.Config.Handler, http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, status)
	newToken := env.Data["session_id"].(string)
	require.NotEqual(t, token, newToken)

	terminated := readEventOf(t, first, chat.EventSessionTerminated)
	assert.NotEmpty(t, terminated.Message)
	expectClose(t, first, chat.ClosePolicyViolation)

	// the old token no longer opens a connection
	stale := dialWS(t, server, token)
	event := readEvent(t, stale)
	assert.Equal(t, chat.EventInvalidSession, event.Type)

	// the superseding token does
	second := dialWS(t, server, newToken)
	joined := readEventOf(t, second, chat.EventPlayerJoined)
	assert.Equal(t, "alice", joined.Name)
	assert.Equal(t, 1, joined.TotalPlayers)
}

func TestConnectedUsersListsLivePresence(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t)
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/users")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var empty struct {
		Code int             `json:"code"`
		Data []chat.Presence `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	assert.Empty(t, empty.Data)

	token := registerUser(t, server, "alice", "secret")
	conn := dialWS(t, server, token)
	readEventOf(t, conn, chat.EventPlayerJoined)

	resp, err = http.Get(server.URL + "/api/users")
	require.NoError(t, err)
	defer resp.Body.Close()

	var populated struct {
		Code int             `json:"code"`
		Data []chat.Presence `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&populated))
	require.Len(t, populated.Data, 1)
	assert.Equal(t, "alice", populated.Data[0].Name)
}
