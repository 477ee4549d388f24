package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}

func TestWebsocketStreamsEvents(t *testing.T) {
	srv, ts := newGameServer(t, &stubClient{cfg: twoPlayerMatch("m-1", 10)}, 2)
	srv.LoadInitial(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Run(ctx)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	first := readMessage(t, conn)
	for first["type"] == "match_loaded" {
		first = readMessage(t, conn)
	}
	assert.Equal(t, "snapshot", first["type"])
	assert.Equal(t, "in_progress", first["state"].(map[string]any)["status"])

	require.Eventually(t, func() bool { return srv.ws.Len() == 1 }, time.Second, 10*time.Millisecond)
	resp := doRequest(t, ts, http.MethodPost, "/api/roll", map[string]int{"player_index": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// match_loaded may still be in flight from the initial load.
	ev := readMessage(t, conn)
	for ev["type"] == "match_loaded" {
		ev = readMessage(t, conn)
	}
	assert.Equal(t, "rolled", ev["type"])
	assert.Equal(t, float64(2), ev["roll"].(map[string]any)["value"])
	assert.Equal(t, float64(1), ev["state"].(map[string]any)["current_turn"])
}
