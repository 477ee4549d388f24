package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"roll-for-your-life/internal/config"
	"roll-for-your-life/internal/dice"
	"roll-for-your-life/internal/game"
	"roll-for-your-life/internal/match"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	mu        sync.Mutex
	cfg       match.Config
	fetchErr  error
	reportErr []error
	reports   int
}

func (c *stubClient) FetchMatch(context.Context) (match.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg, c.fetchErr
}

func (c *stubClient) ReportWinner(_ context.Context, matchID, playerID match.ID) (match.Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports++
	if len(c.reportErr) > 0 {
		err := c.reportErr[0]
		c.reportErr = c.reportErr[1:]
		if err != nil {
			return match.Ack{}, err
		}
	}
	return match.Ack{MatchID: matchID, WinnerID: playerID, ReceivedAt: time.Now()}, nil
}

func (c *stubClient) reportCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reports
}

func twoPlayerMatch(id string, target int) match.Config {
	return match.Config{
		MatchID:    match.NewID(id),
		ScoreToWin: target,
		Players: []match.PlayerInfo{
			{ID: match.NewID("p1"), Name: "Ada", AvatarURL: "https://img/ada.png"},
			{ID: match.NewID("p2"), Name: "Bob", AvatarURL: "https://img/bob.png"},
		},
	}
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

// newGameServer builds a server around an engine whose die always rolls value.
func newGameServer(t *testing.T, client *stubClient, value int) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.ReportMaxElapsed = 2 * time.Second
	engine := game.New(client, dice.RollerFunc(func() int { return value }))
	srv := New(engine, cfg, zerolog.Nop())
	srv.retryInitial = 5 * time.Millisecond
	return srv, newTestServer(t, srv.Handler())
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}
