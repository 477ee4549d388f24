package db

import (
	"time"

	"gorm.io/datatypes"
)

// RosterPlayer is a player the match service can seat in new matches.
type RosterPlayer struct {
	ID        uint      `gorm:"primaryKey"`
	PlayerID  string    `gorm:"size:64;uniqueIndex;not null"`
	Name      string    `gorm:"size:64;not null"`
	ImageURL  string    `gorm:"size:512;not null;default:''"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Match is one issued match. Players holds the seated roster as a JSON array
// in turn order, frozen when the match is issued.
type Match struct {
	ID         string         `gorm:"primaryKey;size:64"`
	ScoreToWin int            `gorm:"not null"`
	Players    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
	Result     *MatchResult
}

// MatchResult records the winner. The unique index on MatchID makes a match
// decidable once.
type MatchResult struct {
	ID        uint      `gorm:"primaryKey"`
	MatchID   string    `gorm:"size:64;uniqueIndex;not null"`
	WinnerID  string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
