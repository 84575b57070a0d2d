package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/auth"
	"github.com/Parth0603/backendServer/internal/core"
)

// startWSServer boots a live engine behind the /ws route with guest
// identities, the way the real router wires it.
func startWSServer(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	engine := app.New(app.Options{})
	go engine.Run(ctx)

	ctl := NewController(engine, Config{PingPeriod: time.Minute})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("TestSessions", cookie.NewStore([]byte("test-secret"))))
	r.GET("/ws", auth.Middleware(nil), func(c *gin.Context) { ctl.Handle(ctx, c) })

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func sendWire(t *testing.T, ws *websocket.Conn, event string, data any) {
	t.Helper()
	f, err := core.Encode(event, data)
	if err != nil {
		t.Fatalf("encode %s: %v", event, err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, f); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// awaitWire reads frames until one carries the wanted event, skipping
// unrelated traffic on the socket.
func awaitWire(t *testing.T, ws *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		if err := ws.SetReadDeadline(deadline); err != nil {
			t.Fatalf("deadline: %v", err)
		}
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		var env core.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad frame %q: %v", data, err)
		}
		if env.Event == event {
			return env.Data
		}
	}
}

func welcomeOf(t *testing.T, ws *websocket.Conn) app.WelcomePayload {
	t.Helper()
	var w app.WelcomePayload
	if err := json.Unmarshal(awaitWire(t, ws, app.EvWelcome), &w); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	return w
}

func TestSocketSessionFlow(t *testing.T) {
	url := startWSServer(t)

	hostWS := dialWS(t, url)
	hostHello := welcomeOf(t, hostWS)
	if hostHello.ConnectionID == "" || hostHello.SubjectID == "" {
		t.Fatalf("welcome=%+v", hostHello)
	}

	sendWire(t, hostWS, "create-room", map[string]any{
		"kind": "gaming", "title": "arena", "host": map[string]string{"name": "holly"},
	})
	var created app.RoomSnapshot
	if err := json.Unmarshal(awaitWire(t, hostWS, app.EvRoomCreated), &created); err != nil {
		t.Fatalf("room-created: %v", err)
	}
	if created.Room.ID == "" || created.SelfID != hostHello.ConnectionID {
		t.Fatalf("created=%+v", created)
	}

	playerWS := dialWS(t, url)
	playerHello := welcomeOf(t, playerWS)
	sendWire(t, playerWS, "join-room", map[string]any{
		"roomId": created.Room.ID, "profile": map[string]string{"name": "pat"},
	})

	var ack app.RoomSnapshot
	if err := json.Unmarshal(awaitWire(t, playerWS, app.EvRoomJoined), &ack); err != nil {
		t.Fatalf("room-joined: %v", err)
	}
	if ack.HostID != hostHello.ConnectionID {
		t.Fatalf("ack host=%q, want %q", ack.HostID, hostHello.ConnectionID)
	}

	var joined app.MemberPayload
	if err := json.Unmarshal(awaitWire(t, hostWS, app.EvUserConnected), &joined); err != nil {
		t.Fatalf("user-connected: %v", err)
	}
	if joined.Member.Name != "pat" || joined.Member.Conn != playerHello.ConnectionID {
		t.Fatalf("joined member=%+v", joined.Member)
	}

	// Signaling relays opaquely to the addressed peer.
	sendWire(t, playerWS, "signal-offer", map[string]any{
		"targetConnectionId": hostHello.ConnectionID,
		"payload":            map[string]string{"sdp": "v=0"},
	})
	var offer app.SignalPayload
	if err := json.Unmarshal(awaitWire(t, hostWS, app.EvSignalOffer), &offer); err != nil {
		t.Fatalf("signal-offer: %v", err)
	}
	if offer.From != playerHello.ConnectionID || !strings.Contains(string(offer.Payload), "v=0") {
		t.Fatalf("offer=%+v", offer)
	}

	sendWire(t, hostWS, "send-message", map[string]any{"roomId": created.Room.ID, "message": "gg"})
	var msg app.MessagePayload
	if err := json.Unmarshal(awaitWire(t, playerWS, app.EvNewMessage), &msg); err != nil {
		t.Fatalf("new-message: %v", err)
	}
	if msg.Message.Text != "gg" {
		t.Fatalf("message=%+v", msg.Message)
	}

	// Socket death runs the reconciler; the host hears the player leave.
	playerWS.Close()
	var left app.MemberLeftPayload
	if err := json.Unmarshal(awaitWire(t, hostWS, app.EvUserDisconnected), &left); err != nil {
		t.Fatalf("user-disconnected: %v", err)
	}
	if left.ConnectionID != playerHello.ConnectionID {
		t.Fatalf("left=%+v", left)
	}
}

func TestWsConnTrySend(t *testing.T) {
	c := &WsConn{id: "c1", send: make(chan core.Frame, 1)}

	if err := c.TrySend(core.Frame(`{"event":"a"}`)); err != nil {
		t.Fatalf("first send: %v", err)
	}
	// Buffer full: the frame is dropped, never queued blocking.
	if err := c.TrySend(core.Frame(`{"event":"b"}`)); err == nil {
		t.Fatal("send into full buffer succeeded")
	}
	<-c.send
	if err := c.TrySend(core.Frame(`{"event":"c"}`)); err != nil {
		t.Fatalf("send after drain: %v", err)
	}
}

func TestSocketErrorRendering(t *testing.T) {
	url := startWSServer(t)
	ws := dialWS(t, url)
	welcomeOf(t, ws)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	var ep app.ErrorPayload
	if err := json.Unmarshal(awaitWire(t, ws, app.EvError), &ep); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if ep.Code != "INVALID_PAYLOAD" {
		t.Fatalf("code=%q", ep.Code)
	}

	sendWire(t, ws, "join-room", map[string]any{"roomId": "gaming-nope", "profile": map[string]string{"name": "x"}})
	var ref app.RoomRefPayload
	if err := json.Unmarshal(awaitWire(t, ws, app.EvRoomNotFound), &ref); err != nil {
		t.Fatalf("room-not-found: %v", err)
	}
	if ref.RoomID != "gaming-nope" {
		t.Fatalf("roomId=%q", ref.RoomID)
	}

	sendWire(t, ws, "vote-poll", map[string]any{"pollId": "nope", "optionId": 0})
	if err := json.Unmarshal(awaitWire(t, ws, app.EvError), &ep); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if ep.Code != "POLL_NOT_FOUND" {
		t.Fatalf("code=%q", ep.Code)
	}

	sendWire(t, ws, "ping", nil)
	awaitWire(t, ws, app.EvPong)
}

func TestSocketAuthorizationRefusalRendered(t *testing.T) {
	url := startWSServer(t)

	hostWS := dialWS(t, url)
	welcomeOf(t, hostWS)
	sendWire(t, hostWS, "create-room", map[string]any{
		"kind": "gaming", "title": "arena", "host": map[string]string{"name": "holly"},
	})
	var created app.RoomSnapshot
	if err := json.Unmarshal(awaitWire(t, hostWS, app.EvRoomCreated), &created); err != nil {
		t.Fatalf("room-created: %v", err)
	}

	playerWS := dialWS(t, url)
	welcomeOf(t, playerWS)
	sendWire(t, playerWS, "join-room", map[string]any{
		"roomId": created.Room.ID, "profile": map[string]string{"name": "pat"},
	})
	awaitWire(t, playerWS, app.EvRoomJoined)

	// A non-host poll attempt earns an explicit refusal, not silence.
	sendWire(t, playerWS, "create-poll", map[string]any{
		"roomId": created.Room.ID, "question": "q?", "options": []string{"a", "b"},
	})
	var ep app.ErrorPayload
	if err := json.Unmarshal(awaitWire(t, playerWS, app.EvError), &ep); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if ep.Code != "NOT_HOST" {
		t.Fatalf("code=%q, want NOT_HOST", ep.Code)
	}
}
