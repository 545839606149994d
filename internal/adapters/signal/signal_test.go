package signal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/okrasa/Parley/internal/adapters/signal"
	"github.com/okrasa/Parley/internal/app"
	"github.com/okrasa/Parley/internal/domain"
	"github.com/okrasa/Parley/internal/translate"
)

func newTestServer(t *testing.T, translator translate.Translator) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := app.NewRegistry()
	orch := &app.Orchestrator{
		Registry: reg,
		Relay:    &app.Relay{Registry: reg},
		Captions: &app.TranscriptionRouter{
			Registry:   reg,
			Translator: translator,
			Timeout:    time.Second,
		},
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		c.Set("client_token", token)
		c.Next()
	})

	ctl := signal.NewSignalWSController(orch)
	r.GET("/api/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(context.Background(), c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	hdr := http.Header{"Cookie": {"ct=" + id}}
	c, _, err := websocket.DefaultDialer.Dial(url, hdr)
	if err != nil {
		t.Fatalf("dial %s: %v", id, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// awaitEvent reads until an envelope of the wanted type arrives.
func awaitEvent(t *testing.T, c *websocket.Conn, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	_ = c.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		_, data, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("bad frame %q: %v", data, err)
		}
		if m["type"] == typ {
			return m
		}
	}
	t.Fatalf("no %q event before deadline", typ)
	return nil
}

// expectSilence asserts nothing arrives within the window.
func expectSilence(t *testing.T, c *websocket.Conn, window time.Duration) {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(window))
	if _, data, err := c.ReadMessage(); err == nil {
		t.Fatalf("expected silence, got %s", data)
	}
}

func sendEvent(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	if err := c.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// awaitProcessed uses ping/pong to make sure every earlier message on this
// connection has been handled server-side.
func awaitProcessed(t *testing.T, c *websocket.Conn) {
	t.Helper()
	sendEvent(t, c, map[string]string{"type": "ping"})
	awaitEvent(t, c, "pong")
}

func TestConnectHandshake(t *testing.T) {
	srv := newTestServer(t, translate.NewStub(translate.StubConfig{}))

	a := dial(t, srv, "a")
	awaitEvent(t, a, "webrtc-config")
	state := awaitEvent(t, a, "room-state")
	if state["count"] != float64(1) {
		t.Errorf("room count = %v, want 1", state["count"])
	}

	b := dial(t, srv, "b")
	state = awaitEvent(t, b, "room-state")
	if state["count"] != float64(2) {
		t.Errorf("room count = %v, want 2", state["count"])
	}

	joined := awaitEvent(t, a, "peer-joined")
	if joined["id"] != "b" {
		t.Errorf("peer-joined id = %v, want b", joined["id"])
	}
}

func TestOfferRelayedVerbatim(t *testing.T) {
	srv := newTestServer(t, translate.NewStub(translate.StubConfig{}))

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	awaitEvent(t, a, "peer-joined")
	awaitEvent(t, b, "room-state")

	payload := map[string]any{"type": "offer", "sdp": "v=0\r\no=- 42 2 IN IP4 127.0.0.1"}
	sendEvent(t, a, map[string]any{"type": "offer", "payload": payload})

	got := awaitEvent(t, b, "offer")
	raw, _ := json.Marshal(got["payload"])
	want, _ := json.Marshal(payload)
	if string(raw) != string(want) {
		t.Errorf("relayed payload = %s, want %s", raw, want)
	}
}

func TestTranslatedCaptionFlow(t *testing.T) {
	stub := translate.NewStub(translate.StubConfig{
		Dictionary: map[domain.LangCode]map[string]string{
			"EN": {"Hola": "Hello"},
		},
	})
	srv := newTestServer(t, stub)

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	awaitEvent(t, a, "peer-joined")
	awaitEvent(t, b, "room-state")

	sendEvent(t, b, map[string]string{"type": "change-language", "lang": "EN"})
	awaitProcessed(t, b)

	sendEvent(t, a, map[string]string{"type": "transcription", "text": "Hola", "userId": "a"})

	subs := awaitEvent(t, b, "subtitles")
	if subs["text"] != "Hello" {
		t.Errorf("subtitles text = %v, want Hello", subs["text"])
	}
	expectSilence(t, a, 300*time.Millisecond)
}

func TestTranscriptionUserIDMismatchDropped(t *testing.T) {
	srv := newTestServer(t, translate.NewStub(translate.StubConfig{}))

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	awaitEvent(t, a, "peer-joined")
	awaitEvent(t, b, "room-state")

	sendEvent(t, a, map[string]string{"type": "transcription", "text": "Hola", "userId": "b"})
	expectSilence(t, b, 300*time.Millisecond)
}

func TestTranslationFailureNotifiesSpeaker(t *testing.T) {
	stub := translate.NewStub(translate.StubConfig{Err: translate.ErrTranslationFailed})
	srv := newTestServer(t, stub)

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	awaitEvent(t, a, "peer-joined")
	awaitEvent(t, b, "room-state")

	sendEvent(t, a, map[string]string{"type": "transcription", "text": "Hola", "userId": "a"})

	failure := awaitEvent(t, a, "translation-error")
	if failure["message"] != app.FailureMessage {
		t.Errorf("failure message = %v, want the fixed generic text", failure["message"])
	}
	expectSilence(t, b, 300*time.Millisecond)
}

func TestReconnectSurvivesOldSocketClose(t *testing.T) {
	stub := translate.NewStub(translate.StubConfig{})
	srv := newTestServer(t, stub)

	a1 := dial(t, srv, "a")
	awaitEvent(t, a1, "room-state")

	// Same ct cookie reconnects, then the old socket dies.
	a2 := dial(t, srv, "a")
	awaitEvent(t, a2, "room-state")
	_ = a1.Close()
	time.Sleep(100 * time.Millisecond) // let the old socket's teardown run

	b := dial(t, srv, "b")
	state := awaitEvent(t, b, "room-state")
	if state["count"] != float64(2) {
		t.Fatalf("room count after reconnect = %v, want 2", state["count"])
	}
	awaitEvent(t, a2, "peer-joined")

	sendEvent(t, a2, map[string]string{"type": "transcription", "text": "Hola", "userId": "a"})
	subs := awaitEvent(t, b, "subtitles")
	if subs["text"] != "[ES] Hola" {
		t.Errorf("subtitles text = %v, want [ES] Hola", subs["text"])
	}
}

func TestDisconnectNotifiesPeer(t *testing.T) {
	srv := newTestServer(t, translate.NewStub(translate.StubConfig{}))

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	awaitEvent(t, a, "peer-joined")
	awaitEvent(t, b, "room-state")

	_ = b.Close()

	left := awaitEvent(t, a, "peer-left")
	if left["id"] != "b" {
		t.Errorf("peer-left id = %v, want b", left["id"])
	}
}

func TestRoomsIsolateSignaling(t *testing.T) {
	srv := newTestServer(t, translate.NewStub(translate.StubConfig{}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal?room=other"
	hdr := http.Header{"Cookie": {"ct=x"}}
	x, _, err := websocket.DefaultDialer.Dial(url, hdr)
	if err != nil {
		t.Fatalf("dial x: %v", err)
	}
	t.Cleanup(func() { _ = x.Close() })

	a := dial(t, srv, "a")
	awaitEvent(t, a, "room-state")
	awaitEvent(t, x, "room-state")

	sendEvent(t, a, map[string]any{"type": "offer", "payload": map[string]string{"sdp": "v=0"}})
	expectSilence(t, x, 300*time.Millisecond)
}
