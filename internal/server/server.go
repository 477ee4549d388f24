package server

import (
	"context"
	"net/http"
	"time"

	"roll-for-your-life/internal/config"
	"roll-for-your-life/internal/game"

	"github.com/rs/zerolog"
)

type Server struct {
	engine       *game.Engine
	events       <-chan game.Event
	unsubscribe  func()
	ws           *wsHub
	cfg          config.Config
	logger       zerolog.Logger
	retryInitial time.Duration
}

// New subscribes to engine events immediately so nothing published before
// Run starts is lost.
func New(engine *game.Engine, cfg config.Config, logger zerolog.Logger) *Server {
	events, unsubscribe := engine.Subscribe()
	return &Server{
		engine:       engine,
		events:       events,
		unsubscribe:  unsubscribe,
		ws:           newWSHub(logger),
		cfg:          cfg,
		logger:       logger,
		retryInitial: 250 * time.Millisecond,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/roll", s.handleRoll)
	mux.HandleFunc("POST /api/report", s.handleReport)
	mux.HandleFunc("POST /api/restart", s.handleRestart)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}

// Run forwards engine events to websocket clients until ctx is done.
func (s *Server) Run(ctx context.Context) {
	defer s.unsubscribe()
	for {
		select {
		case <-ctx.Done():
			s.ws.CloseAll()
			return
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			s.ws.Broadcast(newEventMessage(ev))
		}
	}
}

// matchContext detaches engine calls from the request so a client hanging up
// mid-report does not turn into a spurious transport failure. The match
// client's own timeout still bounds the round trip.
func matchContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
