package services

import (
	"math"
	"time"
)

// RatingEngine computes new skill ratings from match outcomes. It is pure:
// every input comes in through the arguments, persistence is the caller's
// job, so it can be tested in isolation.
type RatingEngine struct {
	cfg RatingConfig
}

func NewRatingEngine(cfg RatingConfig) *RatingEngine {
	return &RatingEngine{cfg: cfg}
}

func (e *RatingEngine) Config() RatingConfig {
	return e.cfg
}

// ExpectedScore is the modeled probability that a player rated ratingA beats
// a player rated ratingB. 0.5 at equal ratings.
func (e *RatingEngine) ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/e.cfg.Scale))
}

// KFactor returns the sensitivity constant for a player's experience level.
func (e *RatingEngine) KFactor(gamesPlayed int) float64 {
	switch {
	case gamesPlayed < e.cfg.PlacementGames:
		return e.cfg.KPlacement
	case gamesPlayed < e.cfg.EarlyGames:
		return e.cfg.KEarly
	default:
		return e.cfg.KEstablished
	}
}

// DiversityMultiplier scales the delta by opponent familiarity: a first-ever
// meeting is worth extra, repeat games inside the same calendar week decay.
func (e *RatingEngine) DiversityMultiplier(neverPlayed bool, gamesThisWeek int) float64 {
	if neverPlayed {
		return e.cfg.NeverPlayedMult
	}
	if gamesThisWeek == 0 {
		return e.cfg.FirstThisWeekMult
	}
	idx := gamesThisWeek
	if idx >= len(e.cfg.RematchSchedule) {
		idx = len(e.cfg.RematchSchedule) - 1
	}
	mult := e.cfg.RematchSchedule[idx]
	if mult < e.cfg.MinMultiplier {
		mult = e.cfg.MinMultiplier
	}
	return mult
}

// Update returns the new rating for one player after a single result.
// actual is 1 for a win, 0 for a loss; no diversity or activity terms.
func (e *RatingEngine) Update(currentRating, opponentRating float64, gamesPlayed int, didWin bool) float64 {
	actual := 0.0
	if didWin {
		actual = 1.0
	}
	delta := e.KFactor(gamesPlayed) * (actual - e.ExpectedScore(currentRating, opponentRating))
	return e.clampRound(currentRating + delta)
}

// PairContext carries the familiarity and activity signals the engine needs
// beyond the two players' own records. The caller derives these from the
// match ledger before invoking RatePair.
type PairContext struct {
	NeverPlayed      bool // the two players have no completed match, ever
	GamesThisWeek    int  // completed meetings between them this calendar week
	WinnerFirstToday bool // winner has no counted match yet today
}

// RatedPlayer is the slice of a player record the engine reads.
type RatedPlayer struct {
	Rating      float64
	GamesPlayed int
}

// PairResult holds both new ratings plus the metadata the undo log needs to
// make a later revert exact.
type PairResult struct {
	WinnerRating float64
	LoserRating  float64

	WinnerDelta         float64 // raw delta before clamping
	LoserDelta          float64
	DiversityMultiplier float64
	ActivityBonus       float64
}

// RatePair computes both players' new ratings for one decided match.
// The diversity multiplier applies to both sides so the swing stays
// symmetric; the activity bonus goes to the winner only. Rounding happens
// last, after every additive term, so repeated matches don't compound
// rounding error.
func (e *RatingEngine) RatePair(winner, loser RatedPlayer, ctx PairContext) PairResult {
	mult := e.DiversityMultiplier(ctx.NeverPlayed, ctx.GamesThisWeek)

	winnerDelta := e.KFactor(winner.GamesPlayed) * (1 - e.ExpectedScore(winner.Rating, loser.Rating)) * mult
	loserDelta := e.KFactor(loser.GamesPlayed) * (0 - e.ExpectedScore(loser.Rating, winner.Rating)) * mult

	bonus := 0.0
	if ctx.WinnerFirstToday {
		bonus = e.cfg.FirstGameTodayBonus
	}

	return PairResult{
		WinnerRating:        e.clampRound(winner.Rating + winnerDelta + bonus),
		LoserRating:         e.clampRound(loser.Rating + loserDelta),
		WinnerDelta:         winnerDelta,
		LoserDelta:          loserDelta,
		DiversityMultiplier: mult,
		ActivityBonus:       bonus,
	}
}

// NextStreak applies the streak rules for a match counted at now:
// active yesterday → streak+1, active today already → unchanged, gap → 1.
func (e *RatingEngine) NextStreak(currentStreak int, lastActiveDay *time.Time, now time.Time) int {
	if lastActiveDay != nil {
		last := lastActiveDay.Format("2006-01-02")
		today := now.Format("2006-01-02")
		yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

		if last == today {
			if currentStreak < 1 {
				return 1
			}
			return currentStreak
		}
		if last == yesterday {
			next := currentStreak + 1
			if next > e.cfg.MaxStreakDays {
				next = e.cfg.MaxStreakDays
			}
			return next
		}
	}
	return 1
}

func (e *RatingEngine) clampRound(rating float64) float64 {
	if rating < e.cfg.Floor {
		rating = e.cfg.Floor
	}
	if rating > e.cfg.Ceiling {
		rating = e.cfg.Ceiling
	}
	return math.Round(rating*100) / 100
}
