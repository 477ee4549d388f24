// Package game implements the turn, roll, win and restart state machine for a
// single dice match.
//
// An Engine moves through
//
//	idle -> loading -> (ready) -> in_progress -> finished_unreported -> finished_reported
//
// with failed as the sink for load failures. Fetching a match and reporting
// its winner are the only operations that wait on the network; while one is
// outstanding the engine is busy and rejects rolls. Every outstanding call is
// tagged with the generation it started in, and Restart starts a new
// generation, so late responses from a superseded match are discarded.
package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"roll-for-your-life/internal/apperr"
	"roll-for-your-life/internal/dice"
	"roll-for-your-life/internal/match"

	"github.com/rs/zerolog"
)

// ErrSuperseded is returned to a caller whose fetch or report completed after
// a restart replaced its match.
var ErrSuperseded = errors.New("match superseded by restart")

type Engine struct {
	client match.Client
	die    dice.Roller
	logger zerolog.Logger

	mu         sync.Mutex
	generation uint64
	busy       bool
	st         matchState
	subs       map[int]chan Event
	nextSub    int
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New returns an idle engine. Call Load to start the first match.
func New(client match.Client, die dice.Roller, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		die:    die,
		logger: zerolog.Nop(),
		st:     newMatchState(StatusIdle),
		subs:   make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fetches a match and starts it. It is valid from idle and failed; use
// Restart to replace a match that is loading, running or finished. Fetch and
// configuration errors move the engine to failed and are returned verbatim.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.st.status != StatusIdle && e.st.status != StatusFailed {
		err := e.invalidMoveLocked("match already loaded")
		e.mu.Unlock()
		return err
	}
	gen := e.beginLoadLocked()
	e.mu.Unlock()
	return e.load(ctx, gen)
}

// Restart discards the current match, whatever its state, and loads a new
// one. Responses still outstanding for the discarded match are ignored.
func (e *Engine) Restart(ctx context.Context) error {
	e.mu.Lock()
	gen := e.beginLoadLocked()
	e.logger.Info().Uint64("generation", gen).Msg("match restarted")
	e.publishLocked(EventRestarted, nil, nil)
	e.mu.Unlock()
	return e.load(ctx, gen)
}

func (e *Engine) beginLoadLocked() uint64 {
	e.generation++
	e.st = newMatchState(StatusLoading)
	e.busy = true
	return e.generation
}

func (e *Engine) load(ctx context.Context, gen uint64) error {
	cfg, err := e.client.FetchMatch(ctx)
	if err == nil {
		err = match.Validate(cfg)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.logger.Debug().Uint64("generation", gen).Uint64("current", e.generation).Msg("discarding stale match fetch")
		return ErrSuperseded
	}
	e.busy = false
	if err != nil {
		e.st = newMatchState(StatusFailed)
		e.st.err = err
		e.logger.Error().Err(err).Uint64("generation", gen).Msg("match load failed")
		e.publishLocked(EventLoadFailed, nil, err)
		return err
	}

	e.st = newMatchStateFromConfig(cfg)
	e.st.status = StatusInProgress
	e.logger.Info().
		Str("match_id", cfg.MatchID.String()).
		Int("players", len(cfg.Players)).
		Int("score_to_win", cfg.ScoreToWin).
		Uint64("generation", gen).
		Msg("match loaded")
	e.publishLocked(EventMatchLoaded, nil, nil)
	return nil
}

// Roll resolves a roll for the player at playerIndex. It is accepted only
// while the match is in progress, the engine is not busy and playerIndex is
// the current turn; anything else is an apperr.ErrInvalidMove error and
// leaves state untouched.
//
// A winning roll finishes the match and reports the winner before Roll
// returns. The roll itself stands regardless of the report: on a report
// failure Roll returns the resolved Roll together with the transport or
// rejected error, and the engine stays finished_unreported until Report
// succeeds.
func (e *Engine) Roll(ctx context.Context, playerIndex int) (Roll, error) {
	e.mu.Lock()
	if err := e.checkRollLocked(playerIndex); err != nil {
		e.mu.Unlock()
		return Roll{}, err
	}

	value := e.die.Roll()
	player := &e.st.players[playerIndex]
	player.Score += value
	roll := Roll{
		PlayerIndex: playerIndex,
		PlayerID:    player.ID,
		Value:       value,
		Score:       player.Score,
	}

	if player.Score < e.st.scoreToWin {
		e.st.currentTurn = (playerIndex + 1) % len(e.st.players)
		e.st.lastRoll = &roll
		e.logger.Debug().
			Str("match_id", e.st.matchID.String()).
			Int("player_index", playerIndex).
			Int("value", value).
			Int("score", player.Score).
			Msg("rolled")
		e.publishLocked(EventRolled, &roll, nil)
		e.mu.Unlock()
		return roll, nil
	}

	roll.Won = true
	e.st.lastRoll = &roll
	e.st.gameOver = true
	e.st.winnerIndex = playerIndex
	e.st.status = StatusFinishedUnreported
	e.logger.Info().
		Str("match_id", e.st.matchID.String()).
		Str("winner_id", player.ID.String()).
		Int("score", player.Score).
		Msg("match won")
	e.publishLocked(EventWon, &roll, nil)
	gen, matchID, winnerID := e.beginReportLocked()
	e.mu.Unlock()

	_, err := e.report(ctx, gen, matchID, winnerID)
	return roll, err
}

// Report retries reporting the winner of a finished match. Once the service
// has acknowledged the result, Report returns the stored Ack without another
// round trip.
func (e *Engine) Report(ctx context.Context) (match.Ack, error) {
	e.mu.Lock()
	switch {
	case e.busy:
		err := e.invalidMoveLocked("engine busy")
		e.mu.Unlock()
		return match.Ack{}, err
	case e.st.status == StatusFinishedReported && e.st.ack != nil:
		ack := *e.st.ack
		e.mu.Unlock()
		return ack, nil
	case e.st.status != StatusFinishedUnreported:
		err := e.invalidMoveLocked("no winner to report")
		e.mu.Unlock()
		return match.Ack{}, err
	}
	gen, matchID, winnerID := e.beginReportLocked()
	e.mu.Unlock()

	return e.report(ctx, gen, matchID, winnerID)
}

func (e *Engine) beginReportLocked() (uint64, match.ID, match.ID) {
	e.busy = true
	e.publishLocked(EventReporting, nil, nil)
	return e.generation, e.st.matchID, e.st.players[e.st.winnerIndex].ID
}

func (e *Engine) report(ctx context.Context, gen uint64, matchID, winnerID match.ID) (match.Ack, error) {
	ack, err := e.client.ReportWinner(ctx, matchID, winnerID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.logger.Debug().Uint64("generation", gen).Str("match_id", matchID.String()).Msg("discarding stale report response")
		return match.Ack{}, ErrSuperseded
	}
	e.busy = false
	if err != nil {
		e.st.err = err
		e.logger.Warn().Err(err).Str("match_id", matchID.String()).Str("winner_id", winnerID.String()).Msg("winner report failed")
		e.publishLocked(EventReportFailed, nil, err)
		return match.Ack{}, err
	}

	e.st.err = nil
	e.st.reported = true
	e.st.ack = &ack
	e.st.status = StatusFinishedReported
	e.logger.Info().Str("match_id", matchID.String()).Str("winner_id", winnerID.String()).Msg("winner reported")
	e.publishLocked(EventReported, nil, nil)
	return ack, nil
}

func (e *Engine) checkRollLocked(playerIndex int) error {
	var err *apperr.Error
	switch {
	case e.busy:
		err = e.invalidMoveLocked("engine busy")
	case e.st.gameOver:
		err = e.invalidMoveLocked("game already over")
	case e.st.status != StatusInProgress:
		err = e.invalidMoveLocked(fmt.Sprintf("no match in progress (%s)", e.st.status))
	case playerIndex != e.st.currentTurn:
		err = e.invalidMoveLocked(fmt.Sprintf("not player %d's turn", playerIndex))
	default:
		return nil
	}
	err.Metadata["player_index"] = strconv.Itoa(playerIndex)
	return err
}

func (e *Engine) invalidMoveLocked(reason string) *apperr.Error {
	return apperr.WithMetadata(apperr.CodeInvalidMove, reason, map[string]string{
		"status":       string(e.st.status),
		"current_turn": strconv.Itoa(e.st.currentTurn),
	})
}

// Busy reports whether a fetch or report is outstanding.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Snapshot returns a consistent copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	s := State{
		Status:      e.st.status,
		Generation:  e.generation,
		Busy:        e.busy,
		MatchID:     e.st.matchID,
		ScoreToWin:  e.st.scoreToWin,
		CurrentTurn: e.st.currentTurn,
		GameOver:    e.st.gameOver,
		WinnerIndex: e.st.winnerIndex,
		Reported:    e.st.reported,
		Err:         e.st.err,
	}
	if e.st.players != nil {
		s.Players = make([]Player, len(e.st.players))
		copy(s.Players, e.st.players)
	}
	if e.st.winnerIndex >= 0 && e.st.winnerIndex < len(s.Players) {
		winner := s.Players[e.st.winnerIndex]
		s.Winner = &winner
	}
	if e.st.lastRoll != nil {
		roll := *e.st.lastRoll
		s.LastRoll = &roll
	}
	return s
}
