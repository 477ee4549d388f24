package game

import "roll-for-your-life/internal/match"

// Status is the engine's position in the match lifecycle.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	// StatusReady is passed through on a successful load; the first player is
	// current immediately, so observers see StatusInProgress.
	StatusReady              Status = "ready"
	StatusInProgress         Status = "in_progress"
	StatusFinishedUnreported Status = "finished_unreported"
	StatusFinishedReported   Status = "finished_reported"
	StatusFailed             Status = "failed"
)

// Player is a participant in the current match.
type Player struct {
	ID        match.ID `json:"id"`
	Name      string   `json:"name"`
	AvatarURL string   `json:"avatar_url"`
	Score     int      `json:"score"`
}

// Roll is the resolution of one accepted roll.
type Roll struct {
	PlayerIndex int      `json:"player_index"`
	PlayerID    match.ID `json:"player_id"`
	Value       int      `json:"value"`
	Score       int      `json:"score"`
	Won         bool     `json:"won"`
}

// State is a consistent copy of the engine state. It never aliases engine
// memory.
type State struct {
	Status     Status   `json:"status"`
	Generation uint64   `json:"generation"`
	Busy       bool     `json:"busy"`
	MatchID    match.ID `json:"match_id,omitzero"`
	ScoreToWin int      `json:"score_to_win"`
	Players    []Player `json:"players"`
	// CurrentTurn is the index of the player whose roll is valid, or -1 when
	// no match is in progress.
	CurrentTurn int     `json:"current_turn"`
	GameOver    bool    `json:"game_over"`
	Winner      *Player `json:"winner,omitempty"`
	WinnerIndex int     `json:"winner_index"`
	Reported    bool    `json:"reported"`
	LastRoll    *Roll   `json:"last_roll,omitempty"`
	Err         error   `json:"-"`
}

// Current returns the player whose turn it is.
func (s State) Current() (Player, bool) {
	if s.GameOver || s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentTurn], true
}

// matchState is owned exclusively by the Engine and replaced wholesale on
// restart.
type matchState struct {
	status      Status
	matchID     match.ID
	scoreToWin  int
	players     []Player
	currentTurn int
	gameOver    bool
	winnerIndex int
	reported    bool
	ack         *match.Ack
	lastRoll    *Roll
	err         error
}

func newMatchState(status Status) matchState {
	return matchState{
		status:      status,
		currentTurn: -1,
		winnerIndex: -1,
	}
}

func newMatchStateFromConfig(cfg match.Config) matchState {
	players := make([]Player, 0, len(cfg.Players))
	for _, info := range cfg.Players {
		players = append(players, Player{
			ID:        info.ID,
			Name:      info.Name,
			AvatarURL: info.AvatarURL,
			Score:     0,
		})
	}
	return matchState{
		status:      StatusReady,
		matchID:     cfg.MatchID,
		scoreToWin:  cfg.ScoreToWin,
		players:     players,
		currentTurn: 0,
		winnerIndex: -1,
	}
}
