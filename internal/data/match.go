package data

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/justmike2000/item-wars/internal/game"
)

// Match is the archived record of one session, written when the registry
// reaps it. Player columns follow join order.
type Match struct {
	ID        uint64 `gorm:"primaryKey"`
	SessionID string `gorm:"uniqueIndex; not null"`
	PlayerOne string
	PlayerTwo string
	Started   bool
	Completed bool
	CreatedAt time.Time
	ReapedAt  time.Time
}

// NewMatch flattens a reaped session into its archive record.
func NewMatch(g *game.NetworkedGame, reapedAt time.Time) *Match {
	match := &Match{
		SessionID: g.ID,
		Started:   g.Started,
		Completed: g.Completed,
		ReapedAt:  reapedAt,
	}
	if len(g.Players) > 0 {
		match.PlayerOne = g.Players[0].Name
	}
	if len(g.Players) > 1 {
		match.PlayerTwo = g.Players[1].Name
	}
	return match
}

// CreateMatch persists the Match record to the database.
func CreateMatch(db *gorm.DB, match *Match) error {
	return db.Create(match).Error
}

// FindMatchBySessionID searches for an archived match with the specified
// session id, returning the *Match instance if found or nil if there is
// no match.
func FindMatchBySessionID(db *gorm.DB, sessionID string) (*Match, error) {
	var match Match
	err := db.Where("session_id = ?", sessionID).First(&match).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &match, nil
}

// ListMatches returns archived matches in reap order, newest last.
func ListMatches(db *gorm.DB, limit int) ([]Match, error) {
	var matches []Match
	err := db.Order("reaped_at").Limit(limit).Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}
