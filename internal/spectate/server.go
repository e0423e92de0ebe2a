// Package spectate serves a read-only view of a running session over HTTP:
// JSON status endpoints and a websocket feed of session events.
package spectate

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/luxquant/gomoku/internal/config"
	"github.com/luxquant/gomoku/internal/game"
)

// Source is the session state the server exposes.
type Source interface {
	Snapshot() game.Snapshot
}

type Config struct {
	Addr      string
	Heartbeat time.Duration
	Logger    zerolog.Logger
	// Settings, when set, is served read-only at /api/config.
	Settings *config.Store
}

type Server struct {
	cfg    Config
	source Source
	hub    *Hub
	log    zerolog.Logger
}

func New(cfg Config, source Source) *Server {
	return &Server{
		cfg:    cfg,
		source: source,
		hub:    NewHub(),
		log:    cfg.Logger.With().Str("component", "spectate").Logger(),
	}
}

// Observe forwards a session event to every connected spectator. It has the
// game.Observer signature.
func (s *Server) Observe(ev game.Event) {
	if !s.hub.HasClients() {
		return
	}
	s.hub.Publish("event", ev)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.source.Snapshot())
	})
	r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"history": s.source.Snapshot().History})
	})
	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Settings == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no config"})
			return
		}
		writeJSON(w, http.StatusOK, s.cfg.Settings.Get())
	})
	r.Get("/ws", s.serveWS)
	return r
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down and
// disconnects every spectator.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan struct{})
	go s.hub.Run(done)
	defer close(done)

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("spectator server listening")

	select {
	case <-ctx.Done():
	case err, ok := <-serverErrCh:
		if ok {
			return errors.Wrap(err, "spectator server")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.log.Warn().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			return errors.Wrap(closeErr, "close spectator server")
		}
	}
	s.log.Info().Msg("spectator server stopped")
	return nil
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &Client{hub: s.hub, send: make(chan []byte, 16)}
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.source.Snapshot())})
	s.hub.Register(client)

	go func() {
		defer conn.Close()
		if err := writeWithHeartbeat(conn, client.send, s.cfg.Heartbeat); err != nil {
			s.log.Debug().Err(err).Msg("spectator write failed")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "request_status" {
			s.hub.SendTo(client, wsMessage{Type: "status", Payload: mustMarshal(s.source.Snapshot())})
		}
	}
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
