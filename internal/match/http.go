package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roll-for-your-life/internal/apperr"

	"github.com/rs/zerolog"
)

// GamePath is the match service endpoint for both fetching and reporting.
const GamePath = "/api/game"

// IdempotencyHeader carries the match id on reports. A match has one result,
// so the match id already identifies a retried report.
const IdempotencyHeader = "Idempotency-Key"

const maxResponseBytes = 1 << 20

// HTTPClient implements Client against the match service JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.http = c
	}
}

// WithTimeout bounds every round trip. Zero means no client-side bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		h.timeout = d
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(h *HTTPClient) {
		h.logger = logger
	}
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  zerolog.Nop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) FetchMatch(ctx context.Context) (Config, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+GamePath, nil)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.CodeTransport, "build fetch request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.CodeTransport, "fetch match", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Config{}, apperr.Wrap(apperr.CodeTransport, "read match response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Config{}, apperr.WithMetadata(
			apperr.CodeTransport,
			fmt.Sprintf("fetch match: unexpected status %d", resp.StatusCode),
			map[string]string{"status": strconv.Itoa(resp.StatusCode)},
		)
	}

	var cfg Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		return Config{}, apperr.Wrap(apperr.CodeTransport, "decode match response", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	c.logger.Debug().
		Str("match_id", cfg.MatchID.String()).
		Int("players", len(cfg.Players)).
		Int("score_to_win", cfg.ScoreToWin).
		Msg("match fetched")
	return cfg, nil
}

func (c *HTTPClient) ReportWinner(ctx context.Context, matchID, playerID ID) (Ack, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(reportRequest{MatchID: matchID, WinnerID: playerID})
	if err != nil {
		return Ack{}, apperr.Wrap(apperr.CodeTransport, "encode report", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GamePath, bytes.NewReader(payload))
	if err != nil {
		return Ack{}, apperr.Wrap(apperr.CodeTransport, "build report request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(IdempotencyHeader, matchID.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return Ack{}, apperr.Wrap(apperr.CodeTransport, "report winner", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Ack{}, apperr.Wrap(apperr.CodeTransport, "read report response", err)
	}
	meta := map[string]string{
		"match_id":  matchID.String(),
		"winner_id": playerID.String(),
		"status":    strconv.Itoa(resp.StatusCode),
	}

	var decoded reportResponse
	decodeErr := json.Unmarshal(body, &decoded)

	switch {
	case resp.StatusCode >= 500:
		return Ack{}, apperr.WithMetadata(apperr.CodeTransport,
			fmt.Sprintf("report winner: unexpected status %d", resp.StatusCode), meta)
	case resp.StatusCode >= 400:
		msg := fmt.Sprintf("report winner: rejected with status %d", resp.StatusCode)
		if decodeErr == nil && decoded.Error != "" {
			msg += ": " + decoded.Error
		}
		return Ack{}, apperr.WithMetadata(apperr.CodeRejected, msg, meta)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Ack{}, apperr.WithMetadata(apperr.CodeTransport,
			fmt.Sprintf("report winner: unexpected status %d", resp.StatusCode), meta)
	}

	if decodeErr != nil {
		return Ack{}, apperr.WrapWithMetadata(apperr.CodeTransport, "decode report response", meta, decodeErr)
	}
	if decoded.Success == nil {
		return Ack{}, apperr.WithMetadata(apperr.CodeTransport, "report response missing success flag", meta)
	}
	if !*decoded.Success {
		msg := "report winner: not accepted"
		if decoded.Error != "" {
			msg += ": " + decoded.Error
		}
		return Ack{}, apperr.WithMetadata(apperr.CodeRejected, msg, meta)
	}

	c.logger.Debug().
		Str("match_id", matchID.String()).
		Str("winner_id", playerID.String()).
		Msg("winner acknowledged")
	return Ack{MatchID: matchID, WinnerID: playerID, ReceivedAt: c.now()}, nil
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
