package matchsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roll-for-your-life/internal/db"
	"roll-for-your-life/internal/match"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps matches and results in Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (s *GormStore) Roster(ctx context.Context) ([]match.PlayerInfo, error) {
	var rows []db.RosterPlayer
	if err := s.db.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	roster := make([]match.PlayerInfo, 0, len(rows))
	for _, row := range rows {
		roster = append(roster, match.PlayerInfo{
			ID:        match.NewID(row.PlayerID),
			Name:      row.Name,
			AvatarURL: row.ImageURL,
		})
	}
	return roster, nil
}

// UpsertRoster inserts or updates roster players keyed by player id.
func (s *GormStore) UpsertRoster(ctx context.Context, players []match.PlayerInfo) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}
	rows := make([]db.RosterPlayer, 0, len(players))
	for i, p := range players {
		rows = append(rows, db.RosterPlayer{
			PlayerID: p.ID.String(),
			Name:     p.Name,
			ImageURL: p.AvatarURL,
			Position: i,
		})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "image_url", "position", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *GormStore) CreateMatch(ctx context.Context, scoreToWin int, players []match.PlayerInfo) (Match, error) {
	if len(players) == 0 {
		return Match{}, ErrEmptyRoster
	}
	payload, err := json.Marshal(players)
	if err != nil {
		return Match{}, fmt.Errorf("encode players: %w", err)
	}
	record := db.Match{
		ID:         uuid.NewString(),
		ScoreToWin: scoreToWin,
		Players:    datatypes.JSON(payload),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return Match{}, err
	}
	return toMatch(record)
}

func (s *GormStore) GetMatch(ctx context.Context, id match.ID) (Match, error) {
	var record db.Match
	err := s.db.WithContext(ctx).Preload("Result").Where("id = ?", id.String()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Match{}, ErrMatchNotFound
	}
	if err != nil {
		return Match{}, err
	}
	return toMatch(record)
}

func (s *GormStore) RecordWinner(ctx context.Context, id, winnerID match.ID) (Match, error) {
	m, err := s.GetMatch(ctx, id)
	if err != nil {
		return Match{}, err
	}
	decided, err := m.decide(winnerID, time.Time{})
	if err != nil || m.Decided() {
		return decided, err
	}

	result := db.MatchResult{
		MatchID:  m.ID.String(),
		WinnerID: decided.WinnerID.String(),
	}
	err = s.db.WithContext(ctx).Create(&result).Error
	if err == nil {
		decided.DecidedAt = result.CreatedAt
		return decided, nil
	}
	return settleInsert(err, winnerID, func() (Match, error) {
		return s.GetMatch(ctx, id)
	})
}

// settleInsert resolves a failed result insert. A unique violation means a
// concurrent report decided the match first, so the report is judged against
// the stored winner.
func settleInsert(err error, winnerID match.ID, reread func() (Match, error)) (Match, error) {
	if !isUniqueViolation(err) {
		return Match{}, err
	}
	m, err := reread()
	if err != nil {
		return Match{}, err
	}
	return m.decide(winnerID, time.Time{})
}

func toMatch(record db.Match) (Match, error) {
	var players []match.PlayerInfo
	if err := json.Unmarshal(record.Players, &players); err != nil {
		return Match{}, fmt.Errorf("decode players for match %s: %w", record.ID, err)
	}
	m := Match{
		ID:         match.NewID(record.ID),
		ScoreToWin: record.ScoreToWin,
		Players:    players,
		CreatedAt:  record.CreatedAt,
	}
	if record.Result != nil {
		m.WinnerID = match.NewID(record.Result.WinnerID)
		if winner, ok := m.seat(m.WinnerID); ok {
			m.WinnerID = winner.ID
		}
		m.DecidedAt = record.Result.CreatedAt
	}
	return m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
