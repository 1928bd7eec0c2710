package models

import (
	"time"
)

// Court is a display-only venue reference. Matches and challenges carry a
// court id for context; the lifecycle logic never interprets it.
type Court struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
	City string `gorm:"index" json:"city"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
