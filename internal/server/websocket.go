package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type wsHub struct {
	mu     sync.Mutex
	conns  map[*wsConn]struct{}
	logger zerolog.Logger
}

func newWSHub(logger zerolog.Logger) *wsHub {
	return &wsHub{
		conns:  make(map[*wsConn]struct{}),
		logger: logger,
	}
}

func (h *wsHub) Add(conn *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *wsHub) Remove(conn *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.conn.Close()
}

func (h *wsHub) Send(conn *wsConn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.write(data)
}

func (h *wsHub) Broadcast(payload any) {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("encode ws payload")
		return
	}
	for _, conn := range conns {
		if err := conn.write(data); err != nil {
			h.Remove(conn)
		}
	}
}

func (h *wsHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.conn.Close()
		delete(h.conns, conn)
	}
}

func (h *wsHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn := &wsConn{conn: raw}
	s.logger.Info().Str("remote", r.RemoteAddr).Msg("ws connected")
	s.ws.Add(conn)
	s.ws.Send(conn, eventMessage{Type: "snapshot", State: newStateView(s.engine.Snapshot())})
	go s.readWS(conn)
}

func (s *Server) readWS(conn *wsConn) {
	defer s.ws.Remove(conn)
	for {
		if _, _, err := conn.conn.ReadMessage(); err != nil {
			s.logger.Info().Err(err).Msg("ws disconnected")
			return
		}
	}
}
