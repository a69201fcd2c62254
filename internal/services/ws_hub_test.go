package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/events"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub spins up a real WebSocket pair and registers the server side
// with the hub under userID. The returned client connection reads what
// the hub sends.
func dialHub(t *testing.T, hub *WSHub, userID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Registration happens in the server handler; wait for it.
	require.Eventually(t, func() bool { return hub.IsOnline(userID) }, time.Second, 5*time.Millisecond)
	return client
}

func readMessage(t *testing.T, client *websocket.Conn) WSMessage {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(time.Second))
	var msg WSMessage
	require.NoError(t, client.ReadJSON(&msg))
	return msg
}

func TestHubSendToUser(t *testing.T) {
	hub := NewWSHub()
	client := dialHub(t, hub, "alice-id")

	require.NoError(t, hub.SendToUser("alice-id", WSMessage{
		Type: "memory_created",
		Data: map[string]any{"memory_id": "mem-1"},
	}))

	msg := readMessage(t, client)
	assert.Equal(t, "memory_created", msg.Type)
	assert.Equal(t, "mem-1", msg.Data["memory_id"])
}

func TestHubSendToOfflineUser(t *testing.T) {
	hub := NewWSHub()
	assert.False(t, hub.IsOnline("nobody"))
	assert.Error(t, hub.SendToUser("nobody", WSMessage{Type: "ping"}))
}

func TestHubDispatchAddressedUsersOnly(t *testing.T) {
	hub := NewWSHub()
	alice := dialHub(t, hub, "alice-id")
	bob := dialHub(t, hub, "bob-id")

	hub.Dispatch(events.Event{
		Type:    "connection_updated",
		UserIDs: []string{"alice-id", "carol-id"},
		Data:    map[string]any{"connection_id": "conn-1"},
	})

	msg := readMessage(t, alice)
	assert.Equal(t, "connection_updated", msg.Type)

	// Bob was not addressed and receives nothing.
	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var ignored WSMessage
	assert.Error(t, bob.ReadJSON(&ignored))
}

func TestHubUnregisterOnlyOwnConnection(t *testing.T) {
	hub := NewWSHub()
	dialHub(t, hub, "alice-id")

	h := hub
	h.mu.RLock()
	first := h.connections["alice-id"]
	h.mu.RUnlock()

	// A reconnect replaces the registration.
	dialHub(t, hub, "alice-id")

	// The stale connection's deferred unregister must not evict the
	// replacement.
	hub.Unregister("alice-id", first)
	assert.True(t, hub.IsOnline("alice-id"))

	h.mu.RLock()
	second := h.connections["alice-id"]
	h.mu.RUnlock()
	hub.Unregister("alice-id", second)
	assert.False(t, hub.IsOnline("alice-id"))
}
