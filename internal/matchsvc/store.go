// Package matchsvc is a reference implementation of the match service the
// game talks to: it issues matches from a roster and records winners.
package matchsvc

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"roll-for-your-life/internal/match"

	"github.com/google/uuid"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrUnknownPlayer  = errors.New("winner is not seated in this match")
	ErrAlreadyDecided = errors.New("match already has a different winner")
	ErrEmptyRoster    = errors.New("roster is empty")
)

// Match is an issued match and, once decided, its winner.
type Match struct {
	ID         match.ID
	ScoreToWin int
	Players    []match.PlayerInfo
	WinnerID   match.ID
	DecidedAt  time.Time
	CreatedAt  time.Time
}

func (m Match) Decided() bool {
	return !m.WinnerID.IsZero()
}

// seat finds a player by id text, so a client that echoes a string id as a
// number, or the reverse, still names the same player.
func (m Match) seat(playerID match.ID) (match.PlayerInfo, bool) {
	i := slices.IndexFunc(m.Players, func(p match.PlayerInfo) bool {
		return p.ID.String() == playerID.String()
	})
	if i < 0 {
		return match.PlayerInfo{}, false
	}
	return m.Players[i], true
}

// decide applies a winner report to m. A decided match accepts the same
// winner again and rejects any other.
func (m Match) decide(winnerID match.ID, at time.Time) (Match, error) {
	winner, ok := m.seat(winnerID)
	if !ok {
		return Match{}, ErrUnknownPlayer
	}
	if m.Decided() {
		if m.WinnerID.String() != winner.ID.String() {
			return m, ErrAlreadyDecided
		}
		return m, nil
	}
	m.WinnerID = winner.ID
	m.DecidedAt = at
	return m, nil
}

// Store persists matches and results.
type Store interface {
	Roster(ctx context.Context) ([]match.PlayerInfo, error)
	CreateMatch(ctx context.Context, scoreToWin int, players []match.PlayerInfo) (Match, error)
	GetMatch(ctx context.Context, id match.ID) (Match, error)
	// RecordWinner decides a match. Recording the same winner again succeeds
	// and returns the first decision; a different winner is
	// ErrAlreadyDecided. One result is kept per match, which is what makes a
	// retried report safe.
	RecordWinner(ctx context.Context, id, winnerID match.ID) (Match, error)
}

type MemoryStore struct {
	mu      sync.Mutex
	roster  []match.PlayerInfo
	matches map[string]*Match
	now     func() time.Time
}

func NewMemoryStore(roster []match.PlayerInfo) *MemoryStore {
	return &MemoryStore{
		roster:  slices.Clone(roster),
		matches: make(map[string]*Match),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Roster(context.Context) ([]match.PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.roster), nil
}

func (s *MemoryStore) CreateMatch(_ context.Context, scoreToWin int, players []match.PlayerInfo) (Match, error) {
	if len(players) == 0 {
		return Match{}, ErrEmptyRoster
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &Match{
		ID:         match.NewID(uuid.NewString()),
		ScoreToWin: scoreToWin,
		Players:    slices.Clone(players),
		CreatedAt:  s.now(),
	}
	s.matches[m.ID.String()] = m
	return cloneMatch(m), nil
}

func (s *MemoryStore) GetMatch(_ context.Context, id match.ID) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id.String()]
	if !ok {
		return Match{}, ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (s *MemoryStore) RecordWinner(_ context.Context, id, winnerID match.ID) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id.String()]
	if !ok {
		return Match{}, ErrMatchNotFound
	}
	decided, err := cloneMatch(m).decide(winnerID, s.now())
	if err != nil {
		return decided, err
	}
	*m = decided
	return cloneMatch(m), nil
}

func cloneMatch(m *Match) Match {
	out := *m
	out.Players = slices.Clone(m.Players)
	return out
}
