package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nvoss/codeshare/internal/app"
	"github.com/nvoss/codeshare/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:         "release",
		ReadLimit:    65536,
		PingPeriod:   54 * time.Second,
		WriteTimeout: 5 * time.Second,
		JoinLimit:    16,
		JoinInterval: 10 * time.Second,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctl := NewController(testConfig(), app.NewRelay())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev map[string]any
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

// readUntil drains events until the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		ev := readEvent(t, conn)
		if ev["type"] == typ {
			return ev
		}
	}
	t.Fatalf("never received %q", typ)
	return nil
}

func TestJoinRoomRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	a := dial(t, srv)

	if err := a.WriteJSON(map[string]any{"type": "join-room", "roomId": "r1", "username": "alice"}); err != nil {
		t.Fatalf("write join: %v", err)
	}

	state := readUntil(t, a, "room-state")
	if state["code"] != "// Start collaborating...\n" || state["language"] != "javascript" {
		t.Fatalf("snapshot = %v", state)
	}
	update := readUntil(t, a, "participants-update")
	if raw, _ := update["users"].([]any); len(raw) != 1 || raw[0] != "alice" {
		t.Fatalf("roster = %v, want [alice]", update["users"])
	}
}

func TestCodeChangeRelayedBetweenConnections(t *testing.T) {
	srv := newTestServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	if err := a.WriteJSON(map[string]any{"type": "join-room", "roomId": "r1", "username": "alice"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readUntil(t, a, "participants-update")

	if err := b.WriteJSON(map[string]any{"type": "join-room", "roomId": "r1", "username": "bob"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readUntil(t, b, "participants-update")
	joined := readUntil(t, a, "user-joined")
	if joined["username"] != "bob" {
		t.Fatalf("user-joined = %v", joined)
	}

	if err := a.WriteJSON(map[string]any{"type": "code-change", "roomId": "r1", "code": "x=1"}); err != nil {
		t.Fatalf("write code-change: %v", err)
	}
	change := readUntil(t, b, "code-change")
	if change["code"] != "x=1" {
		t.Fatalf("relayed code = %v", change)
	}
}

func TestDisconnectNotifiesRemainingMembers(t *testing.T) {
	srv := newTestServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	if err := a.WriteJSON(map[string]any{"type": "join-room", "roomId": "r1", "username": "alice"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readUntil(t, a, "participants-update")
	if err := b.WriteJSON(map[string]any{"type": "join-room", "roomId": "r1", "username": "bob"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readUntil(t, b, "participants-update")
	readUntil(t, a, "user-joined")

	b.Close()

	left := readUntil(t, a, "user-left")
	if left["username"] != "bob" {
		t.Fatalf("user-left = %v", left)
	}
	update := readUntil(t, a, "participants-update")
	if raw, _ := update["users"].([]any); len(raw) != 1 || raw[0] != "alice" {
		t.Fatalf("roster after disconnect = %v", update["users"])
	}
}

func TestMalformedEventsAreDroppedSilently(t *testing.T) {
	srv := newTestServer(t)
	a := dial(t, srv)

	// Not JSON, unknown type, missing roomId: none kill the connection.
	_ = a.WriteMessage(websocket.TextMessage, []byte("not json"))
	_ = a.WriteJSON(map[string]any{"type": "no-such-event"})
	_ = a.WriteJSON(map[string]any{"type": "join-room", "username": "alice"})

	if err := a.WriteJSON(map[string]any{"type": "join-room", "roomId": "r1", "username": "alice"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	state := readUntil(t, a, "room-state")
	if state["language"] != "javascript" {
		t.Fatalf("connection broken by malformed input: %v", state)
	}
}
