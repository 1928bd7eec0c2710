package models

import (
	"time"
)

// Challenge statuses.
//
// Flow: pending → accepted (creates match) → completed (match finished)
//       pending → declined (recipient) / cancelled (sender)
const (
	ChallengeStatusPending   = "pending"
	ChallengeStatusAccepted  = "accepted"
	ChallengeStatusDeclined  = "declined"
	ChallengeStatusCancelled = "cancelled"
	ChallengeStatusCompleted = "completed"
)

// Challenge is a "want to play" proposal wrapping a future Match.
// At most one unresolved challenge may exist between any two players,
// in either direction.
type Challenge struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	FromUserID string  `gorm:"index;not null" json:"from_user_id"`
	ToUserID   string  `gorm:"index;not null" json:"to_user_id"`
	Message    *string `json:"message,omitempty"`
	CourtID    *string `json:"court_id,omitempty"`
	Status     string  `gorm:"type:varchar(16);default:'pending';index" json:"status"`

	// Set on acceptance: the match this challenge produced.
	MatchID *string `gorm:"index" json:"match_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
