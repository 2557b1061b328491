package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, identity *Identity, opts ...Option) (*Hub, string) {
	t.Helper()
	h, err := NewHub(opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.HandleUpgrade(w, r, identity)
	}))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, h.Shutdown(ctx))
		srv.Close()
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// expect 读取帧直到出现 event
func expect(t *testing.T, conn *websocket.Conn, event string) received {
	t.Helper()
	for range 20 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var r received
		require.NoError(t, conn.ReadJSON(&r))
		if r.Event == event {
			return r
		}
	}
	t.Fatalf("event %s not received", event)
	return received{}
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

func TestHandleUpgrade_EndToEnd(t *testing.T) {
	h, url := startServer(t, nil, WithAllowAllOrigins())

	a := dial(t, url)
	expect(t, a, EventConnectionStats)
	expect(t, a, EventConnectionEstablished)
	send(t, a, EventUserIdentify, IdentifyRequest{ID: "u1", Name: "Agnes", Role: "sekretaris"})
	expect(t, a, EventUsersList)

	b := dial(t, url)
	expect(t, b, EventConnectionEstablished)
	send(t, b, EventUserIdentify, IdentifyRequest{ID: "u2", Name: "Budi", Role: "staf"})
	joined := decode[UserJoinedPayload](t, expect(t, a, EventUserJoined))
	assert.Equal(t, "u2", joined.User.UserID)
	expect(t, b, EventUsersList)

	send(t, a, EventChatMessage, ChatRequest{Text: "Selamat pagi", TargetID: "u2"})
	chat := decode[ChatPayload](t, expect(t, b, EventChatMessage))
	assert.Equal(t, "Selamat pagi", chat.Text)
	assert.Equal(t, "Agnes", chat.SenderName)

	send(t, b, EventHeartbeat, nil)
	ack := decode[HeartbeatAckPayload](t, expect(t, b, EventHeartbeatAck))
	assert.Equal(t, 2, ack.ConnectionCount)

	require.NoError(t, b.Close())
	left := decode[UserLeftPayload](t, expect(t, a, EventUserLeft))
	assert.Equal(t, ReasonClientDisconnect, left.Reason)
	assert.Equal(t, "u2", left.User.UserID)

	assert.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleUpgrade_CapacityExceeded(t *testing.T) {
	h, url := startServer(t, nil, WithAllowAllOrigins(), WithMaxConnections(1))

	a := dial(t, url)
	expect(t, a, EventConnectionEstablished)

	b := dial(t, url)
	rejected := decode[ErrorPayload](t, expect(t, b, EventErrorConnection))
	assert.Equal(t, CodeConnectionLimit, rejected.Code)

	require.NoError(t, b.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := b.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	assert.Equal(t, 1, h.Count())
}

func TestHandleUpgrade_VerifiedIdentity(t *testing.T) {
	h, url := startServer(t, &Identity{UserID: "u-real", Name: "Romo", Role: "uskup"},
		WithAllowAllOrigins(), WithRequireAuth(true))

	a := dial(t, url)
	send(t, a, EventUserIdentify, IdentifyRequest{ID: "spoof"})
	joined := decode[UserJoinedPayload](t, expect(t, a, EventUserJoined))
	assert.Equal(t, "u-real", joined.User.UserID)
	assert.Equal(t, "u-real", h.List()[0].UserID)
}

func TestHandleUpgrade_Refused(t *testing.T) {
	t.Run("require auth", func(t *testing.T) {
		_, url := startServer(t, nil, WithAllowAllOrigins(), WithRequireAuth(true))
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("cross origin", func(t *testing.T) {
		_, url := startServer(t, nil)
		header := http.Header{"Origin": []string{"https://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("whitelisted origin", func(t *testing.T) {
		_, url := startServer(t, nil, WithCheckOriginWhitelist([]string{"https://dashboard.example"}))
		header := http.Header{"Origin": []string{"https://dashboard.example"}}
		conn, _, err := websocket.DefaultDialer.Dial(url, header)
		require.NoError(t, err)
		_ = conn.Close()
	})
}

func TestShutdown_ClosesLiveConnections(t *testing.T) {
	h, err := NewHub(WithAllowAllOrigins())
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.HandleUpgrade(w, r, nil)
	}))
	defer srv.Close()

	a := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	expect(t, a, EventConnectionEstablished)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.Shutdown(ctx))

	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = a.ReadMessage()
	assert.Error(t, err)
}
