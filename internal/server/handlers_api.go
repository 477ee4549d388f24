package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"roll-for-your-life/internal/apperr"
	"roll-for-your-life/internal/game"
	"roll-for-your-life/internal/match"

	"github.com/cenkalti/backoff/v5"
)

type rollRequest struct {
	PlayerIndex *int `json:"player_index"`
}

type rollResponse struct {
	Roll        game.Roll `json:"roll"`
	State       stateView `json:"state"`
	ReportError string    `json:"report_error,omitempty"`
}

type reportResponse struct {
	MatchID    match.ID  `json:"match_id"`
	WinnerID   match.ID  `json:"winner_id"`
	State      stateView `json:"state"`
	ReceivedAt string    `json:"received_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateView(s.engine.Snapshot()))
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var req rollRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerIndex == nil {
		writeError(w, http.StatusBadRequest, "player_index is required")
		return
	}
	roll, err := s.engine.Roll(matchContext(r), *req.PlayerIndex)
	if err != nil && !roll.Won {
		s.logger.Info().Err(err).Int("player_index", *req.PlayerIndex).Msg("roll rejected")
		writeError(w, statusForError(err), err.Error())
		return
	}
	resp := rollResponse{
		Roll:  roll,
		State: newStateView(s.engine.Snapshot()),
	}
	if err != nil {
		// The roll won the match; only the report failed.
		resp.ReportError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReport retries the winner report. Transport failures are retried
// with exponential backoff up to REPORT_MAX_ELAPSED; a rejection or an
// invalid move ends the attempt immediately. The service keys reports by
// match id, so repeating an ambiguous attempt is safe.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := matchContext(r)
	ack, err := backoff.Retry(ctx, func() (match.Ack, error) {
		ack, err := s.engine.Report(ctx)
		if err == nil {
			return ack, nil
		}
		if errors.Is(err, apperr.ErrTransport) {
			s.logger.Warn().Err(err).Msg("winner report attempt failed, retrying")
			return match.Ack{}, err
		}
		return match.Ack{}, backoff.Permanent(err)
	}, backoff.WithBackOff(s.reportBackOff()), backoff.WithMaxElapsedTime(s.cfg.ReportMaxElapsed))
	if err != nil {
		writeJSON(w, statusForError(err), map[string]any{
			"error": err.Error(),
			"state": newStateView(s.engine.Snapshot()),
		})
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{
		MatchID:    ack.MatchID,
		WinnerID:   ack.WinnerID,
		ReceivedAt: ack.ReceivedAt.UTC().Format(time.RFC3339),
		State:      newStateView(s.engine.Snapshot()),
	})
}

func (s *Server) reportBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInitial
	return b
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Restart(matchContext(r)); err != nil {
		writeJSON(w, statusForError(err), map[string]any{
			"error": err.Error(),
			"state": newStateView(s.engine.Snapshot()),
		})
		return
	}
	writeJSON(w, http.StatusOK, newStateView(s.engine.Snapshot()))
}

// LoadInitial starts the first match. Failures are logged and left visible
// in the state; POST /api/restart tries again.
func (s *Server) LoadInitial(ctx context.Context) {
	if err := s.engine.Load(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial match load failed")
	}
}
