package models

import (
	"time"
)

// Player is the local profile record for a ranked player.
// Rating fields are mutated only by the rating engine and streak bookkeeping;
// identity lifecycle (signup, deletion) is owned by the profile service.
type Player struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string  `gorm:"not null;index" json:"name"`
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Position  *string `json:"position,omitempty"`
	City      *string `gorm:"index" json:"city,omitempty"`

	// Skill rating on the bounded 1.00–5.00 scale, 2dp.
	Rating float64 `gorm:"type:numeric(3,2);default:3.0" json:"rating"`

	GamesPlayed    int `gorm:"default:0" json:"games_played"`
	GamesContested int `gorm:"default:0" json:"games_contested"`

	// Consecutive calendar days with at least one completed match.
	StreakDays    int        `gorm:"default:0" json:"streak_days"`
	LastActiveDay *time.Time `gorm:"type:date" json:"last_active_day,omitempty"`

	// Push token forwarded to the notification gateway; nil = unreachable.
	PushToken *string `json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ContestRate is the share of this player's games that ended contested.
func (p *Player) ContestRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesContested) / float64(p.GamesPlayed)
}
