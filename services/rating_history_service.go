package services

import (
	"errors"
	"log"
	"time"

	"match-rating-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingHistoryService owns the append-only rating log and the exact-undo
// path for voided results.
type RatingHistoryService struct {
	DB     *gorm.DB
	Engine *RatingEngine
}

func NewRatingHistoryService(db *gorm.DB, engine *RatingEngine) *RatingHistoryService {
	return &RatingHistoryService{DB: db, Engine: engine}
}

// recordTx appends one history entry inside the caller's transaction.
func recordTx(tx *gorm.DB, playerID, matchID string, ratingAfter, delta, multiplier float64) error {
	entry := models.RatingHistoryEntry{
		ID:                  uuid.NewString(),
		PlayerID:            playerID,
		MatchID:             matchID,
		RatingAfter:         ratingAfter,
		RatingDelta:         delta,
		DiversityMultiplier: multiplier,
	}
	return tx.Create(&entry).Error
}

// ForPlayer returns a player's rating-over-time series, oldest first.
// rangeKey is one of "1w", "1m", "1y", or "" for everything.
func (s *RatingHistoryService) ForPlayer(playerID, rangeKey string) ([]models.RatingHistoryEntry, error) {
	db := s.DB.Where("player_id = ?", playerID)

	var since time.Time
	switch rangeKey {
	case "1w":
		since = time.Now().AddDate(0, 0, -7)
	case "1m":
		since = time.Now().AddDate(0, -1, 0)
	case "1y":
		since = time.Now().AddDate(-1, 0, 0)
	}
	if !since.IsZero() {
		db = db.Where("created_at > ?", since)
	}

	var entries []models.RatingHistoryEntry
	err := db.Order("created_at ASC").Limit(500).Find(&entries).Error
	return entries, err
}

// ForMatch returns the entries a single match produced (one per player).
func (s *RatingHistoryService) ForMatch(matchID string) ([]models.RatingHistoryEntry, error) {
	var entries []models.RatingHistoryEntry
	err := s.DB.Where("match_id = ?", matchID).Find(&entries).Error
	return entries, err
}

// Revert voids a completed match's rating effect: each participant is
// restored to the rating immediately prior to this match (their most recent
// entry that is not this match, or the configured starting rating), and the
// match's history entries are deleted. Administrative use only; the normal
// contest path fires before any rating is applied.
func (s *RatingHistoryService) Revert(matchID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var entries []models.RatingHistoryEntry
		if err := tx.Where("match_id = ?", matchID).Find(&entries).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return notFoundf("no rating history for match %s", matchID)
		}

		for _, entry := range entries {
			prev, err := s.priorRating(tx, entry.PlayerID, matchID)
			if err != nil {
				return err
			}
			if err := setRatingTx(tx, entry.PlayerID, prev); err != nil {
				return err
			}
			log.Printf("↩️ [RATING] Reverted %s to %.2f (match %s voided)", entry.PlayerID, prev, matchID)
		}

		return tx.Where("match_id = ?", matchID).Delete(&models.RatingHistoryEntry{}).Error
	})
}

func (s *RatingHistoryService) priorRating(tx *gorm.DB, playerID, excludeMatchID string) (float64, error) {
	var prev models.RatingHistoryEntry
	err := tx.Where("player_id = ? AND match_id != ?", playerID, excludeMatchID).
		Order("created_at DESC").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.Engine.Config().StartRating, nil
	}
	if err != nil {
		return 0, err
	}
	return prev.RatingAfter, nil
}
