package spectate

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/luxquant/gomoku/internal/config"
	"github.com/luxquant/gomoku/internal/game"
)

type fakeSource struct {
	snap game.Snapshot
}

func (f fakeSource) Snapshot() game.Snapshot {
	return f.snap
}

func testSource() fakeSource {
	return fakeSource{snap: game.Snapshot{
		Mode:      "human-ai",
		Status:    game.StatusRunning,
		ToMove:    "White",
		Round:     2,
		BoardSize: 9,
		History:   []game.MoveView{{X: 4, Y: 4, Player: "Black", Round: 1}},
	}}
}

func newTestServer(t *testing.T, heartbeat time.Duration) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BoardSize = 9
	srv := New(Config{Heartbeat: heartbeat, Logger: zerolog.Nop(), Settings: config.NewStore(cfg)}, testSource())
	done := make(chan struct{})
	go srv.hub.Run(done)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		close(done)
		ts.Close()
	})
	return srv, ts
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestPingStatusHistory(t *testing.T) {
	_, ts := newTestServer(t, time.Second)

	var ping map[string]bool
	getJSON(t, ts.URL+"/api/ping", &ping)
	if !ping["ok"] {
		t.Fatalf("expected ok ping, got %v", ping)
	}

	var snap game.Snapshot
	getJSON(t, ts.URL+"/api/status", &snap)
	if snap.Status != game.StatusRunning || snap.Round != 2 || snap.ToMove != "White" {
		t.Fatalf("unexpected status %+v", snap)
	}

	var history struct {
		History []game.MoveView `json:"history"`
	}
	getJSON(t, ts.URL+"/api/history", &history)
	if len(history.History) != 1 || history.History[0].X != 4 {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestConfigEndpoint(t *testing.T) {
	_, ts := newTestServer(t, time.Second)
	var cfg config.Config
	getJSON(t, ts.URL+"/api/config", &cfg)
	if cfg.BoardSize != 9 || cfg.Mode != config.ModeHumanVsAI {
		t.Fatalf("unexpected config %+v", cfg)
	}

	bare := New(Config{Logger: zerolog.Nop()}, testSource())
	rec := httptest.NewRecorder()
	bare.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without settings, got %d", rec.Code)
	}
}

func TestObserveWithoutClientsIsDropped(t *testing.T) {
	srv := New(Config{Logger: zerolog.Nop()}, testSource())
	for i := 0; i < 200; i++ {
		srv.Observe(game.Event{Kind: game.EventMove})
	}
	if len(srv.hub.broadcast) != 0 {
		t.Fatalf("expected nothing queued without spectators, got %d", len(srv.hub.broadcast))
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	if !hub.HasClients() {
		t.Fatalf("expected a registered client")
	}
	hub.SendTo(c, wsMessage{Type: "status"})
	hub.Unregister(c)
	hub.Unregister(c)
	if hub.HasClients() {
		t.Fatalf("expected no clients after unregister")
	}
	if _, ok := <-c.send; !ok {
		t.Fatalf("expected the queued message before close")
	}
	if _, ok := <-c.send; ok {
		t.Fatalf("expected send to be closed")
	}
	hub.SendTo(c, wsMessage{Type: "status"})
}

func TestNoMoveEndpoint(t *testing.T) {
	_, ts := newTestServer(t, time.Second)
	resp, err := http.Post(ts.URL+"/api/move", "application/json", strings.NewReader(`{"x":1,"y":1}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("spectators must not be able to play moves")
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebsocketStatusAndEvents(t *testing.T) {
	srv, ts := newTestServer(t, time.Minute)
	conn := dial(t, ts)

	msg := readMessage(t, conn)
	if msg.Type != "status" {
		t.Fatalf("expected initial status, got %q", msg.Type)
	}

	srv.Observe(game.Event{Kind: game.EventMove, Move: &game.MoveView{X: 3, Y: 5}})
	msg = readMessage(t, conn)
	if msg.Type != "event" {
		t.Fatalf("expected an event message, got %q", msg.Type)
	}
	var ev game.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Kind != game.EventMove || ev.Move == nil || ev.Move.X != 3 {
		t.Fatalf("unexpected event %+v", ev)
	}

	if err := conn.WriteJSON(wsMessage{Type: "request_status"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "status" {
		t.Fatalf("expected a status reply, got %q", msg.Type)
	}
}

func TestWebsocketHeartbeat(t *testing.T) {
	_, ts := newTestServer(t, 20*time.Millisecond)
	conn := dial(t, ts)
	readMessage(t, conn)
	if msg := readMessage(t, conn); msg.Type != "ping" {
		t.Fatalf("expected a ping on an idle connection, got %q", msg.Type)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := New(Config{Logger: zerolog.Nop()}, testSource())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	var ping map[string]bool
	getJSON(t, "http://"+ln.Addr().String()+"/api/ping", &ping)

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
