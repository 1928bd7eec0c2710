package models

import (
	"time"
)

// RatingHistoryEntry is an immutable, append-only record of a player's rating
// after a completed match. It doubles as the undo source when a completed
// result is later voided: revert restores the most recent entry that is not
// tied to the voided match.
type RatingHistoryEntry struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID string `gorm:"index:idx_rating_history_player_time,priority:1;not null" json:"player_id"`
	MatchID  string `gorm:"index;not null" json:"match_id"`

	RatingAfter float64 `gorm:"type:numeric(3,2);not null" json:"rating_after"`

	// Engine metadata kept so a revert (and any dispute audit) is exact.
	RatingDelta         float64 `json:"rating_delta"`
	DiversityMultiplier float64 `json:"diversity_multiplier"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_rating_history_player_time,priority:2"`
}

func (RatingHistoryEntry) TableName() string {
	return "rating_history"
}
