package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RatingConfig holds every tunable of the rating engine. Loaded from a YAML
// file so deltas can be retuned without a redeploy.
type RatingConfig struct {
	// Logistic scale for the expected-score curve.
	Scale float64 `yaml:"scale"`

	// Rating bounds and the value assigned to players with no history.
	StartRating float64 `yaml:"start_rating"`
	Floor       float64 `yaml:"floor"`
	Ceiling     float64 `yaml:"ceiling"`

	// Step K-factor: placement players swing hard, veterans stabilize.
	KPlacement   float64 `yaml:"k_placement"`
	KEarly       float64 `yaml:"k_early"`
	KEstablished float64 `yaml:"k_established"`

	PlacementGames int `yaml:"placement_games"` // below this → KPlacement
	EarlyGames     int `yaml:"early_games"`     // below this → KEarly

	// Opponent-diversity multipliers.
	NeverPlayedMult   float64   `yaml:"never_played_mult"`
	FirstThisWeekMult float64   `yaml:"first_this_week_mult"`
	RematchSchedule   []float64 `yaml:"rematch_schedule"` // indexed by games this week
	MinMultiplier     float64   `yaml:"min_multiplier"`

	// Engagement bonuses.
	FirstGameTodayBonus float64 `yaml:"first_game_today_bonus"`
	MaxStreakDays       int     `yaml:"max_streak_days"`
}

// DefaultRatingConfig mirrors the production tuning.
func DefaultRatingConfig() RatingConfig {
	cfg := RatingConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadRatingConfig reads a YAML rating config, expanding ${ENV} references
// and filling any missing values with defaults.
func LoadRatingConfig(path string) (RatingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RatingConfig{}, fmt.Errorf("reading rating config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg RatingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RatingConfig{}, fmt.Errorf("parsing rating config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *RatingConfig) applyDefaults() {
	if c.Scale == 0 {
		c.Scale = 1.0
	}
	if c.StartRating == 0 {
		c.StartRating = 3.0
	}
	if c.Floor == 0 {
		c.Floor = 1.0
	}
	if c.Ceiling == 0 {
		c.Ceiling = 5.0
	}
	if c.KPlacement == 0 {
		c.KPlacement = 0.20
	}
	if c.KEarly == 0 {
		c.KEarly = 0.10
	}
	if c.KEstablished == 0 {
		c.KEstablished = 0.05
	}
	if c.PlacementGames == 0 {
		c.PlacementGames = 10
	}
	if c.EarlyGames == 0 {
		c.EarlyGames = 30
	}
	if c.NeverPlayedMult == 0 {
		c.NeverPlayedMult = 1.5
	}
	if c.FirstThisWeekMult == 0 {
		c.FirstThisWeekMult = 1.2
	}
	if len(c.RematchSchedule) == 0 {
		c.RematchSchedule = []float64{1.0, 0.5, 0.25, 0.1}
	}
	if c.MinMultiplier == 0 {
		c.MinMultiplier = 0.1
	}
	if c.FirstGameTodayBonus == 0 {
		c.FirstGameTodayBonus = 0.02
	}
	if c.MaxStreakDays == 0 {
		c.MaxStreakDays = 365
	}
}
