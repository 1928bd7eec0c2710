package models

import (
	"time"
)

// Match statuses. A match only ever moves forward except for the
// contested → score_submitted resubmission loop.
const (
	MatchStatusPending        = "pending"
	MatchStatusAccepted       = "accepted"
	MatchStatusScoreSubmitted = "score_submitted"
	MatchStatusCompleted      = "completed"
	MatchStatusContested      = "contested"
	MatchStatusCancelled      = "cancelled"
)

// Match records a single 1v1 pairing and its lifecycle.
// Rows are never deleted; the status history is the audit trail.
type Match struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	Status string `gorm:"type:varchar(16);default:'pending';index" json:"status"`

	CreatorID  string  `gorm:"index;not null" json:"creator_id"`
	OpponentID *string `gorm:"index" json:"opponent_id,omitempty"` // nil until accepted

	// Scores exist only from score_submitted onward; contest clears them.
	ScoreCreator  *int `json:"score_creator,omitempty"`
	ScoreOpponent *int `json:"score_opponent,omitempty"`

	// Which participant submitted the pending score. Required to forbid
	// self-confirmation and self-contest.
	ScoreSubmitterID *string `json:"score_submitter_id,omitempty"`

	// Set only once the result is trusted (status completed).
	WinnerID *string `gorm:"index" json:"winner_id,omitempty"`

	// Informational venue reference; never interpreted by the state machine.
	CourtID *string `json:"court_id,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasParticipant reports whether userID is one of the two parties.
func (m *Match) HasParticipant(userID string) bool {
	if m.CreatorID == userID {
		return true
	}
	return m.OpponentID != nil && *m.OpponentID == userID
}

// OtherParticipant returns the counterpart of userID, or "" if the match has
// no opponent yet or userID is not a participant.
func (m *Match) OtherParticipant(userID string) string {
	if m.OpponentID == nil {
		return ""
	}
	switch userID {
	case m.CreatorID:
		return *m.OpponentID
	case *m.OpponentID:
		return m.CreatorID
	}
	return ""
}
