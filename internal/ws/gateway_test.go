package ws_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/relaychat/relay/internal/chat"
	"github.com/relaychat/relay/internal/ws"
)

type wireEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type wireRoomInfo struct {
	Room     string            `json:"room"`
	Users    []wireUser        `json:"users"`
	Messages []json.RawMessage `json:"messages"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gateway := ws.NewGateway(zerolog.Nop())
	coordinator := chat.New(chat.Config{
		DefaultRooms:  []string{"General", "Random"},
		AvatarBaseURL: "https://avatars.test/svg",
	}, gateway, zerolog.Nop())
	gateway.Attach(coordinator)

	srv := httptest.NewServer(gateway)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// waitFor reads frames until the named event arrives, skipping others.
func waitFor(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var env wireEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if env.Event == event {
			return env.Data
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, username, room string) wireRoomInfo {
	t.Helper()
	sendEvent(t, conn, "join", map[string]string{"username": username, "room": room})
	var info wireRoomInfo
	if err := json.Unmarshal(waitFor(t, conn, "room_info"), &info); err != nil {
		t.Fatalf("decode room_info: %v", err)
	}
	return info
}

func TestJoinRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	info := join(t, conn, "alice", "General")
	if info.Room != "General" {
		t.Fatalf("unexpected room: %s", info.Room)
	}
	if len(info.Users) != 1 || info.Users[0].Username != "alice" {
		t.Fatalf("unexpected users: %+v", info.Users)
	}
	if len(info.Messages) != 0 {
		t.Fatalf("expected empty history, got %d", len(info.Messages))
	}

	var rooms []string
	if err := json.Unmarshal(waitFor(t, conn, "rooms_list"), &rooms); err != nil {
		t.Fatalf("decode rooms_list: %v", err)
	}
	if len(rooms) != 2 || rooms[0] != "General" {
		t.Fatalf("unexpected rooms list: %v", rooms)
	}
}

func TestRoomMessageFanOut(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	join(t, alice, "alice", "General")
	join(t, bob, "bob", "General")

	sendEvent(t, alice, "send_message", map[string]string{"room": "General", "message": "hello room"})

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		var msg struct {
			Username string `json:"username"`
			Body     string `json:"message"`
			Kind     string `json:"type"`
		}
		if err := json.Unmarshal(waitFor(t, conn, "new_message"), &msg); err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if msg.Username != "alice" || msg.Body != "hello room" || msg.Kind != "text" {
			t.Fatalf("%s got unexpected message: %+v", name, msg)
		}
	}
}

func TestPrivateMessageRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	join(t, alice, "alice", "General")
	info := join(t, bob, "bob", "General")

	var aliceID string
	for _, u := range info.Users {
		if u.Username == "alice" {
			aliceID = u.ID
		}
	}
	if aliceID == "" {
		t.Fatalf("alice not in room snapshot: %+v", info.Users)
	}

	sendEvent(t, bob, "send_private_message", map[string]string{
		"targetUserId": aliceID,
		"message":      "psst",
	})

	var ids []string
	for _, conn := range []*websocket.Conn{alice, bob} {
		var pm struct {
			ID             string `json:"id"`
			SenderUsername string `json:"senderUsername"`
			Body           string `json:"message"`
		}
		if err := json.Unmarshal(waitFor(t, conn, "new_private_message"), &pm); err != nil {
			t.Fatalf("decode private message: %v", err)
		}
		if pm.SenderUsername != "bob" || pm.Body != "psst" {
			t.Fatalf("unexpected private message: %+v", pm)
		}
		ids = append(ids, pm.ID)
	}
	if ids[0] != ids[1] {
		t.Fatalf("expected identical message id, got %q vs %q", ids[0], ids[1])
	}

	sendEvent(t, bob, "get_private_messages", map[string]string{"targetUserId": aliceID})
	var hist struct {
		TargetUserID string            `json:"targetUserId"`
		Messages     []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(waitFor(t, bob, "private_messages_history"), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if hist.TargetUserID != aliceID || len(hist.Messages) != 1 {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestTypingRelayOverWire(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	join(t, alice, "alice", "General")
	join(t, bob, "bob", "General")

	sendEvent(t, alice, "typing_start", map[string]string{"room": "General"})

	var notice struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(waitFor(t, bob, "user_typing"), &notice); err != nil {
		t.Fatalf("decode user_typing: %v", err)
	}
	if notice.Username != "alice" {
		t.Fatalf("unexpected typist: %+v", notice)
	}
}

func TestMalformedFrameDoesNotKillConnection(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json at all")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	sendEvent(t, conn, "definitely_unknown", map[string]string{"x": "y"})

	// The connection must still work.
	info := join(t, conn, "alice", "General")
	if info.Room != "General" {
		t.Fatalf("connection broken after malformed frame: %+v", info)
	}
}

func TestCloseNotifiesRemainingMembers(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	join(t, alice, "alice", "General")
	join(t, bob, "bob", "General")

	if err := alice.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var notice struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(waitFor(t, bob, "user_left"), &notice); err != nil {
		t.Fatalf("decode user_left: %v", err)
	}
	if notice.Username != "alice" {
		t.Fatalf("unexpected user_left: %+v", notice)
	}

	var users []wireUser
	if err := json.Unmarshal(waitFor(t, bob, "users_update"), &users); err != nil {
		t.Fatalf("decode users_update: %v", err)
	}
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("unexpected remaining members: %+v", users)
	}
}
