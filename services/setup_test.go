package services_test

import (
	"fmt"
	"testing"
	"time"

	"match-rating-system/models"
	"match-rating-system/services"

	"github.com/google/uuid"
	moderncSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// newTestDB opens a throwaway in-memory database with the full schema.
// Each test gets its own named memory DB so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(moderncSqlite.New(moderncSqlite.Config{
		DSN:        fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DriverName: "sqlite",
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON;")

	if err := db.AutoMigrate(
		&models.Player{},
		&models.Match{},
		&models.Challenge{},
		&models.RatingHistoryEntry{},
		&models.Court{},
	); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func seedPlayer(t *testing.T, db *gorm.DB, id, name string, rating float64, gamesPlayed int) {
	t.Helper()
	p := models.Player{
		ID:          id,
		Name:        name,
		Rating:      rating,
		GamesPlayed: gamesPlayed,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seeding player %s: %v", id, err)
	}
}

func newMatchService(db *gorm.DB) *services.MatchService {
	engine := services.NewRatingEngine(services.DefaultRatingConfig())
	return services.NewMatchService(db, engine, services.NoopNotifier{})
}

func newChallengeService(db *gorm.DB) *services.ChallengeService {
	return services.NewChallengeService(db, services.NoopNotifier{}, services.NoopMessenger{})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }
