package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Parth0603/backendServer/internal/adapters/signal"
	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/config"
	"github.com/Parth0603/backendServer/internal/core"
	"github.com/Parth0603/backendServer/internal/storage"
)

// startTestServer boots the full REST surface against a live engine
// loop with guest-session auth.
func startTestServer(t *testing.T) (*httptest.Server, *storage.Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	engine := app.New(app.Options{})
	go engine.Run(ctx)

	cfg := &config.Config{
		Mode:       "release",
		StaticPath: t.TempDir(),
		Secret:     "test-secret",
		AuthMode:   "none",
		ICEServers: []config.ICEServer{{URLs: []string{"stun:stun.example.com:3478"}}},
	}
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctl := signal.NewController(engine, signal.Config{})

	ts := httptest.NewServer(SetupRouter(ctx, cfg, engine, ctl, store))
	t.Cleanup(ts.Close)
	return ts, store
}

// newClient returns a client with its own cookie jar, i.e. its own
// guest identity.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url, body string, out any) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("build %s %s: %v", method, url, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s: %v (body %q)", method, url, err, raw)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, _ := startTestServer(t)
	if code := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/healthz", "", nil); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
}

func TestICEEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	if code := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/api/ice", "", &body); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if len(body.ICEServers) != 1 || body.ICEServers[0].URLs[0] != "stun:stun.example.com:3478" {
		t.Fatalf("iceServers=%+v", body.ICEServers)
	}
}

func TestRoomAndPollOverREST(t *testing.T) {
	ts, _ := startTestServer(t)
	host := newClient(t)

	var created struct {
		Room struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"room"`
	}
	code := doJSON(t, host, http.MethodPost, ts.URL+"/api/rooms",
		`{"kind":"teaching","title":"algebra","host":{"name":"holly"}}`, &created)
	if code != http.StatusCreated {
		t.Fatalf("create status=%d", code)
	}
	if created.Room.ID == "" || created.Room.Status != "active" {
		t.Fatalf("room=%+v", created.Room)
	}

	// The cookie jar keeps the guest subject stable, so the creator is
	// still the host on the next call.
	var poll struct {
		Poll struct {
			ID      string `json:"id"`
			Options []struct {
				Text string `json:"text"`
			} `json:"options"`
		} `json:"poll"`
	}
	code = doJSON(t, host, http.MethodPost, ts.URL+"/api/rooms/"+created.Room.ID+"/polls",
		`{"question":"favorite?","options":["a","b"]}`, &poll)
	if code != http.StatusCreated {
		t.Fatalf("poll status=%d", code)
	}
	if len(poll.Poll.Options) != 2 || poll.Poll.Options[1].Text != "b" {
		t.Fatalf("poll=%+v", poll.Poll)
	}

	// A different browser session is a different subject: not the host.
	var failure struct {
		Error string `json:"error"`
	}
	code = doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/rooms/"+created.Room.ID+"/polls",
		`{"question":"q?","options":["a","b"]}`, &failure)
	if code != http.StatusForbidden || failure.Error != "NOT_HOST" {
		t.Fatalf("stranger poll status=%d error=%q", code, failure.Error)
	}

	var fetched struct {
		Room struct {
			Title string `json:"title"`
		} `json:"room"`
		Polls []struct {
			ID string `json:"id"`
		} `json:"polls"`
	}
	code = doJSON(t, host, http.MethodGet, ts.URL+"/api/rooms/"+created.Room.ID, "", &fetched)
	if code != http.StatusOK || fetched.Room.Title != "algebra" || len(fetched.Polls) != 1 {
		t.Fatalf("get status=%d room=%+v polls=%+v", code, fetched.Room, fetched.Polls)
	}

	var listing struct {
		Rooms []struct {
			ID string `json:"id"`
		} `json:"rooms"`
	}
	if code := doJSON(t, host, http.MethodGet, ts.URL+"/api/rooms?kind=teaching", "", &listing); code != http.StatusOK || len(listing.Rooms) != 1 {
		t.Fatalf("list status=%d rooms=%+v", code, listing.Rooms)
	}
	if code := doJSON(t, host, http.MethodGet, ts.URL+"/api/rooms?kind=gaming", "", &listing); code != http.StatusOK || len(listing.Rooms) != 0 {
		t.Fatalf("filtered list status=%d rooms=%+v", code, listing.Rooms)
	}
}

func TestRESTRejections(t *testing.T) {
	ts, _ := startTestServer(t)
	client := newClient(t)

	var failure struct {
		Error string `json:"error"`
	}
	code := doJSON(t, client, http.MethodPost, ts.URL+"/api/rooms", `{"title":"no kind"}`, &failure)
	if code != http.StatusBadRequest || failure.Error != "INVALID_PAYLOAD" {
		t.Fatalf("missing kind status=%d error=%q", code, failure.Error)
	}
	code = doJSON(t, client, http.MethodPost, ts.URL+"/api/rooms", `{"kind":"karaoke","host":{"name":"h"}}`, &failure)
	if code != http.StatusBadRequest {
		t.Fatalf("bad kind status=%d", code)
	}
	code = doJSON(t, client, http.MethodGet, ts.URL+"/api/rooms?kind=karaoke", "", &failure)
	if code != http.StatusBadRequest {
		t.Fatalf("bad kind filter status=%d", code)
	}
	code = doJSON(t, client, http.MethodGet, ts.URL+"/api/rooms/teaching-deadbeef", "", &failure)
	if code != http.StatusNotFound || failure.Error != "ROOM_NOT_FOUND" {
		t.Fatalf("unknown room status=%d error=%q", code, failure.Error)
	}
}

// awaitEnvelope reads frames off a socket until the wanted event
// arrives, skipping unrelated traffic.
func awaitEnvelope(t *testing.T, ws *websocket.Conn, event string) json.RawMessage {
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

func TestRESTAndSocketShareOneStore(t *testing.T) {
	ts, _ := startTestServer(t)
	host := newClient(t)

	// A room made over REST...
	var created struct {
		Room struct {
			ID string `json:"id"`
		} `json:"room"`
	}
	if code := doJSON(t, host, http.MethodPost, ts.URL+"/api/rooms",
		`{"kind":"gaming","title":"arena","host":{"name":"holly"}}`, &created); code != http.StatusCreated {
		t.Fatalf("create status=%d", code)
	}

	// ...is joinable over the WS route of the very same router.
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	dialer := websocket.Dialer{Jar: jar}
	ws, resp, err := dialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer ws.Close()
	awaitEnvelope(t, ws, app.EvWelcome)

	f, err := core.Encode("join-room", map[string]any{
		"roomId": created.Room.ID, "profile": map[string]string{"name": "pat"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, f); err != nil {
		t.Fatalf("write join: %v", err)
	}
	var ack app.RoomSnapshot
	if err := json.Unmarshal(awaitEnvelope(t, ws, app.EvRoomJoined), &ack); err != nil {
		t.Fatalf("room-joined: %v", err)
	}
	if string(ack.Room.ID) != created.Room.ID {
		t.Fatalf("joined %q, created %q", ack.Room.ID, created.Room.ID)
	}

	// The socket join is visible straight back through REST.
	var fetched struct {
		Room struct {
			Members []struct {
				Name string `json:"name"`
			} `json:"members"`
		} `json:"room"`
	}
	if code := doJSON(t, host, http.MethodGet, ts.URL+"/api/rooms/"+created.Room.ID, "", &fetched); code != http.StatusOK {
		t.Fatalf("get status=%d", code)
	}
	if len(fetched.Room.Members) != 1 || fetched.Room.Members[0].Name != "pat" {
		t.Fatalf("members=%+v, want the socket joiner", fetched.Room.Members)
	}
}

func multipartFile(t *testing.T, field, name, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestDocumentUploadRoundTrip(t *testing.T) {
	ts, _ := startTestServer(t)
	host := newClient(t)

	var created struct {
		Room struct {
			ID string `json:"id"`
		} `json:"room"`
	}
	doJSON(t, host, http.MethodPost, ts.URL+"/api/rooms",
		`{"kind":"event","title":"expo","host":{"name":"holly"}}`, &created)

	body, contentType := multipartFile(t, "file", "slides.pdf", "deck bytes")
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/rooms/"+created.Room.ID+"/documents", body)
	if err != nil {
		t.Fatalf("build upload: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := host.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	var uploaded struct {
		Document struct {
			URL  string `json:"url"`
			Name string `json:"name"`
			Size int64  `json:"size"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status=%d", resp.StatusCode)
	}
	if uploaded.Document.Name != "slides.pdf" || uploaded.Document.Size != int64(len("deck bytes")) {
		t.Fatalf("document=%+v", uploaded.Document)
	}

	// The URL the engine announced serves the stored bytes.
	got, err := host.Get(ts.URL + uploaded.Document.URL)
	if err != nil {
		t.Fatalf("fetch file: %v", err)
	}
	served, _ := io.ReadAll(got.Body)
	got.Body.Close()
	if got.StatusCode != http.StatusOK || string(served) != "deck bytes" {
		t.Fatalf("fetch status=%d body=%q", got.StatusCode, served)
	}
}

func TestDocumentUploadRejections(t *testing.T) {
	ts, store := startTestServer(t)
	host := newClient(t)

	var created struct {
		Room struct {
			ID string `json:"id"`
		} `json:"room"`
	}
	doJSON(t, host, http.MethodPost, ts.URL+"/api/rooms",
		`{"kind":"event","title":"expo","host":{"name":"holly"}}`, &created)

	// No file part.
	var failure struct {
		Error string `json:"error"`
	}
	code := doJSON(t, host, http.MethodPost, ts.URL+"/api/rooms/"+created.Room.ID+"/documents", "", &failure)
	if code != http.StatusBadRequest {
		t.Fatalf("missing file status=%d", code)
	}

	// A stranger's upload is refused and its bytes cleaned up again.
	body, contentType := multipartFile(t, "file", "sneaky.txt", "nope")
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/rooms/"+created.Room.ID+"/documents", body)
	if err != nil {
		t.Fatalf("build upload: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := newClient(t).Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger upload status=%d", resp.StatusCode)
	}
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("read store dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d files behind", len(entries))
	}
}
