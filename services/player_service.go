package services

import (
	"errors"
	"strings"
	"time"

	"match-rating-system/models"

	"gorm.io/gorm"
)

// PlayerService is the single storage gateway for player profile records.
// The state machine and rating code go through it (or its tx-scoped helpers)
// and never know which store sits behind gorm.
type PlayerService struct {
	DB     *gorm.DB
	Engine *RatingEngine
}

func NewPlayerService(db *gorm.DB, engine *RatingEngine) *PlayerService {
	return &PlayerService{DB: db, Engine: engine}
}

// GetPlayer fetches one profile record.
func (s *PlayerService) GetPlayer(id string) (*models.Player, error) {
	return getPlayerTx(s.DB, id)
}

func getPlayerTx(tx *gorm.DB, id string) (*models.Player, error) {
	var p models.Player
	if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("player %s", id)
		}
		return nil, err
	}
	return &p, nil
}

// EnsurePlayer creates a profile row with the starting rating if the identity
// service has minted an id we have not seen yet. Idempotent.
func (s *PlayerService) EnsurePlayer(id, name string) (*models.Player, error) {
	var p models.Player
	err := s.DB.Where("id = ?", id).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = models.Player{
		ID:     id,
		Name:   name,
		Rating: s.Engine.Config().StartRating,
	}
	if err := s.DB.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SetRating overwrites a player's rating. Used by the rating engine caller
// and by the undo path; nothing else writes this column.
func (s *PlayerService) SetRating(id string, rating float64) error {
	return setRatingTx(s.DB, id, rating)
}

func setRatingTx(tx *gorm.DB, id string, rating float64) error {
	res := tx.Model(&models.Player{}).Where("id = ?", id).Update("rating", rating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("player %s", id)
	}
	return nil
}

// SetAvatar stores the CDN URL returned by the avatar store.
func (s *PlayerService) SetAvatar(id, url string) error {
	res := s.DB.Model(&models.Player{}).Where("id = ?", id).Update("avatar_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("player %s", id)
	}
	return nil
}

func incrementGamesPlayedTx(tx *gorm.DB, id string) error {
	return tx.Model(&models.Player{}).Where("id = ?", id).
		Update("games_played", gorm.Expr("games_played + 1")).Error
}

func incrementGamesContestedTx(tx *gorm.DB, id string) error {
	return tx.Model(&models.Player{}).Where("id = ?", id).
		Update("games_contested", gorm.Expr("games_contested + 1")).Error
}

// updateStreakTx applies the streak rules for a match counted at now and
// stamps the activity day. Runs for both winner and loser.
func updateStreakTx(tx *gorm.DB, engine *RatingEngine, p *models.Player, now time.Time) error {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	streak := engine.NextStreak(p.StreakDays, p.LastActiveDay, now)
	return tx.Model(&models.Player{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"streak_days":     streak,
		"last_active_day": day,
	}).Error
}

// SearchPlayers finds profiles by name or city for the challenge picker.
func (s *PlayerService) SearchPlayers(query string, limit int) ([]models.Player, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var players []models.Player
	db := s.DB.Model(&models.Player{}).Limit(limit).Order("rating DESC")

	if query != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(city) LIKE ?", term, term)
	}

	if err := db.Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

// TopPlayers is the SQL rankings query, used directly when the Redis
// leaderboard is disabled and by the rebuild worker.
func (s *PlayerService) TopPlayers(city string, limit int) ([]models.Player, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var players []models.Player
	db := s.DB.Model(&models.Player{}).
		Order("rating DESC, games_played DESC").
		Limit(limit)
	if city != "" {
		db = db.Where("city = ?", city)
	}
	if err := db.Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}
