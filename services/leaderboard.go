package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"match-rating-system/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const rankingsKey = "rankings:global"

// RankEntry is one row of the public rankings.
type RankEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
}

// LeaderboardService mirrors player ratings into a Redis sorted set for fast
// rankings reads. Redis is a cache, never the source of truth: when the
// client is absent or a read fails, queries fall back to SQL.
type LeaderboardService struct {
	DB     *gorm.DB
	Client *redis.Client // nil = Redis disabled
}

func NewLeaderboardService(db *gorm.DB, client *redis.Client) *LeaderboardService {
	return &LeaderboardService{DB: db, Client: client}
}

func cityKey(city string) string {
	return fmt.Sprintf("rankings:city:%s", city)
}

// SetRating writes one player's rating into the global and city sets.
func (s *LeaderboardService) SetRating(ctx context.Context, playerID string, rating float64, city string) error {
	if s.Client == nil {
		return nil
	}
	member := redis.Z{Score: rating, Member: playerID}
	if err := s.Client.ZAdd(ctx, rankingsKey, member).Err(); err != nil {
		return fmt.Errorf("updating global rankings: %w", err)
	}
	if city != "" {
		if err := s.Client.ZAdd(ctx, cityKey(city), member).Err(); err != nil {
			return fmt.Errorf("updating city rankings: %w", err)
		}
	}
	return nil
}

// SyncPlayers refreshes the cached rating for the given players from the DB.
// Called after match completion; failures are logged, never propagated.
func (s *LeaderboardService) SyncPlayers(playerIDs ...string) {
	if s.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var players []models.Player
	if err := s.DB.Where("id IN ?", playerIDs).Find(&players).Error; err != nil {
		log.Printf("⚠️ [RANKINGS] player fetch failed: %v", err)
		return
	}
	for _, p := range players {
		city := ""
		if p.City != nil {
			city = *p.City
		}
		if err := s.SetRating(ctx, p.ID, p.Rating, city); err != nil {
			log.Printf("⚠️ [RANKINGS] sync failed for %s: %v", p.ID, err)
		}
	}
}

// Top returns the highest-rated players, optionally scoped to a city.
func (s *LeaderboardService) Top(ctx context.Context, city string, limit int) ([]RankEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	if s.Client != nil {
		entries, err := s.topFromRedis(ctx, city, limit)
		if err == nil {
			return entries, nil
		}
		log.Printf("⚠️ [RANKINGS] redis read failed, falling back to SQL: %v", err)
	}
	return s.topFromSQL(city, limit)
}

func (s *LeaderboardService) topFromRedis(ctx context.Context, city string, limit int) ([]RankEntry, error) {
	key := rankingsKey
	if city != "" {
		key = cityKey(city)
	}

	zs, err := s.Client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading rankings: %w", err)
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.Member.(string)
	}

	names := map[string]string{}
	if len(ids) > 0 {
		var players []models.Player
		if err := s.DB.Select("id", "name").Where("id IN ?", ids).Find(&players).Error; err != nil {
			return nil, err
		}
		for _, p := range players {
			names[p.ID] = p.Name
		}
	}

	entries := make([]RankEntry, len(zs))
	for i, z := range zs {
		id := z.Member.(string)
		entries[i] = RankEntry{
			Rank:     i + 1,
			PlayerID: id,
			Name:     names[id],
			Rating:   z.Score,
		}
	}
	return entries, nil
}

func (s *LeaderboardService) topFromSQL(city string, limit int) ([]RankEntry, error) {
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

	entries := make([]RankEntry, len(players))
	for i, p := range players {
		entries[i] = RankEntry{Rank: i + 1, PlayerID: p.ID, Name: p.Name, Rating: p.Rating}
	}
	return entries, nil
}

// Rebuild repopulates the Redis sets from the players table. Used at startup
// and by the periodic sync worker so Redis restarts heal themselves.
func (s *LeaderboardService) Rebuild(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}

	var players []models.Player
	if err := s.DB.Find(&players).Error; err != nil {
		return fmt.Errorf("loading players for rebuild: %w", err)
	}

	pipe := s.Client.Pipeline()
	pipe.Del(ctx, rankingsKey)
	for _, p := range players {
		member := redis.Z{Score: p.Rating, Member: p.ID}
		pipe.ZAdd(ctx, rankingsKey, member)
		if p.City != nil && *p.City != "" {
			pipe.ZAdd(ctx, cityKey(*p.City), member)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuilding rankings: %w", err)
	}

	log.Printf("✅ [RANKINGS] rebuilt from DB: %d players", len(players))
	return nil
}
