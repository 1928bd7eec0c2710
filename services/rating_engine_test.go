package services_test

import (
	"math"
	"testing"
	"time"

	"match-rating-system/services"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRatingEngine_ExpectedScore(t *testing.T) {
	Convey("Given an engine with the default tuning", t, func() {
		engine := services.NewRatingEngine(services.DefaultRatingConfig())

		Convey("Equal ratings give a 50 percent expectation", func() {
			So(engine.ExpectedScore(3.0, 3.0), ShouldAlmostEqual, 0.5, 1e-9)
		})

		Convey("Expectations for the two sides always sum to one", func() {
			ea := engine.ExpectedScore(4.2, 2.8)
			eb := engine.ExpectedScore(2.8, 4.2)
			So(ea+eb, ShouldAlmostEqual, 1.0, 1e-9)
			So(ea, ShouldBeGreaterThan, 0.5)
		})
	})
}

func TestRatingEngine_KFactor(t *testing.T) {
	Convey("Given an engine with the default tuning", t, func() {
		engine := services.NewRatingEngine(services.DefaultRatingConfig())

		Convey("Placement players swing at 0.20", func() {
			So(engine.KFactor(0), ShouldEqual, 0.20)
			So(engine.KFactor(9), ShouldEqual, 0.20)
		})

		Convey("Early players swing at 0.10", func() {
			So(engine.KFactor(10), ShouldEqual, 0.10)
			So(engine.KFactor(29), ShouldEqual, 0.10)
		})

		Convey("Established players swing at 0.05", func() {
			So(engine.KFactor(30), ShouldEqual, 0.05)
			So(engine.KFactor(500), ShouldEqual, 0.05)
		})
	})
}

func TestRatingEngine_DiversityMultiplier(t *testing.T) {
	Convey("Given an engine with the default tuning", t, func() {
		engine := services.NewRatingEngine(services.DefaultRatingConfig())

		Convey("A first-ever meeting is worth 1.5x", func() {
			So(engine.DiversityMultiplier(true, 0), ShouldEqual, 1.5)
		})

		Convey("A known opponent, first time this week, is worth 1.2x", func() {
			So(engine.DiversityMultiplier(false, 0), ShouldEqual, 1.2)
		})

		Convey("Rematches inside the same week decay along the schedule", func() {
			So(engine.DiversityMultiplier(false, 1), ShouldEqual, 0.5)
			So(engine.DiversityMultiplier(false, 2), ShouldEqual, 0.25)
			So(engine.DiversityMultiplier(false, 3), ShouldEqual, 0.1)
		})

		Convey("Grinding past the schedule floors at the minimum", func() {
			So(engine.DiversityMultiplier(false, 10), ShouldEqual, 0.1)
			So(engine.DiversityMultiplier(false, 100), ShouldEqual, 0.1)
		})
	})
}

func TestRatingEngine_RatePair(t *testing.T) {
	Convey("Given an engine with the default tuning", t, func() {
		engine := services.NewRatingEngine(services.DefaultRatingConfig())

		Convey("When two fresh 3.00 players meet for the first time", func() {
			winner := services.RatedPlayer{Rating: 3.0, GamesPlayed: 0}
			loser := services.RatedPlayer{Rating: 3.0, GamesPlayed: 0}
			ctx := services.PairContext{NeverPlayed: true}

			result := engine.RatePair(winner, loser, ctx)

			Convey("Then the swing is 0.20 * 0.5 * 1.5 = 0.15 each way", func() {
				So(result.WinnerRating, ShouldEqual, 3.15)
				So(result.LoserRating, ShouldEqual, 2.85)
				So(result.DiversityMultiplier, ShouldEqual, 1.5)
				So(result.ActivityBonus, ShouldEqual, 0)
			})

			Convey("And the gain mirrors the loss when both have the same K", func() {
				So(result.WinnerDelta, ShouldAlmostEqual, -result.LoserDelta, 1e-9)
			})
		})

		Convey("When it is the winner's first counted match of the day", func() {
			winner := services.RatedPlayer{Rating: 3.0, GamesPlayed: 0}
			loser := services.RatedPlayer{Rating: 3.0, GamesPlayed: 0}
			ctx := services.PairContext{NeverPlayed: true, WinnerFirstToday: true}

			result := engine.RatePair(winner, loser, ctx)

			Convey("Then the winner alone gets the activity bonus", func() {
				So(result.WinnerRating, ShouldEqual, 3.17)
				So(result.LoserRating, ShouldEqual, 2.85)
				So(result.ActivityBonus, ShouldEqual, 0.02)
			})
		})

		Convey("When two 3.00 players with 20 games meet for the first time", func() {
			winner := services.RatedPlayer{Rating: 3.0, GamesPlayed: 20}
			loser := services.RatedPlayer{Rating: 3.0, GamesPlayed: 20}

			result := engine.RatePair(winner, loser, services.PairContext{NeverPlayed: true})

			Convey("Then the raw swing is 0.10 * 0.5 * 1.5 = 0.075 each way", func() {
				So(result.WinnerDelta, ShouldAlmostEqual, 0.075, 1e-9)
				So(result.WinnerDelta, ShouldAlmostEqual, -result.LoserDelta, 1e-9)
				So(result.WinnerRating, ShouldBeGreaterThan, 3.0)
				So(result.LoserRating, ShouldBeLessThan, 3.0)
			})
		})

		Convey("When the underdog wins", func() {
			ctx := services.PairContext{NeverPlayed: true}
			upset := engine.RatePair(
				services.RatedPlayer{Rating: 2.5, GamesPlayed: 0},
				services.RatedPlayer{Rating: 3.5, GamesPlayed: 0},
				ctx,
			)
			expected := engine.RatePair(
				services.RatedPlayer{Rating: 3.5, GamesPlayed: 0},
				services.RatedPlayer{Rating: 2.5, GamesPlayed: 0},
				ctx,
			)

			Convey("Then the upset pays far more than the expected win", func() {
				So(upset.WinnerDelta, ShouldBeGreaterThan, expected.WinnerDelta)
				So(upset.WinnerDelta, ShouldBeGreaterThan, 0.2)
			})
		})

		Convey("When a rematch repeats within the week", func() {
			winner := services.RatedPlayer{Rating: 3.0, GamesPlayed: 5}
			loser := services.RatedPlayer{Rating: 3.0, GamesPlayed: 5}

			first := engine.RatePair(winner, loser, services.PairContext{GamesThisWeek: 0})
			second := engine.RatePair(winner, loser, services.PairContext{GamesThisWeek: 1})
			third := engine.RatePair(winner, loser, services.PairContext{GamesThisWeek: 2})

			Convey("Then each repeat is worth strictly less", func() {
				So(second.WinnerDelta, ShouldBeLessThan, first.WinnerDelta)
				So(third.WinnerDelta, ShouldBeLessThan, second.WinnerDelta)
			})
		})

		Convey("When a result would push past the rating bounds", func() {
			Convey("Then the ceiling holds at 5.00", func() {
				result := engine.RatePair(
					services.RatedPlayer{Rating: 4.99, GamesPlayed: 0},
					services.RatedPlayer{Rating: 1.0, GamesPlayed: 0},
					services.PairContext{NeverPlayed: true, WinnerFirstToday: true},
				)
				So(result.WinnerRating, ShouldEqual, 5.0)
			})

			Convey("And the floor holds at 1.00", func() {
				result := engine.RatePair(
					services.RatedPlayer{Rating: 1.05, GamesPlayed: 0},
					services.RatedPlayer{Rating: 1.05, GamesPlayed: 0},
					services.PairContext{NeverPlayed: true},
				)
				So(result.LoserRating, ShouldEqual, 1.0)
			})
		})

		Convey("Ratings always come back rounded to two decimals", func() {
			result := engine.RatePair(
				services.RatedPlayer{Rating: 3.33, GamesPlayed: 12},
				services.RatedPlayer{Rating: 2.87, GamesPlayed: 4},
				services.PairContext{NeverPlayed: true},
			)
			for _, r := range []float64{result.WinnerRating, result.LoserRating} {
				So(math.Abs(r*100-math.Round(r*100)), ShouldBeLessThan, 1e-9)
			}
		})
	})
}

func TestRatingEngine_Update(t *testing.T) {
	Convey("Given an engine with the default tuning", t, func() {
		engine := services.NewRatingEngine(services.DefaultRatingConfig())

		Convey("A plain single-player update has no diversity or bonus terms", func() {
			So(engine.Update(3.0, 3.0, 0, true), ShouldEqual, 3.1)
			So(engine.Update(3.0, 3.0, 0, false), ShouldEqual, 2.9)
		})
	})
}

func TestRatingEngine_NextStreak(t *testing.T) {
	Convey("Given a fixed reference day", t, func() {
		engine := services.NewRatingEngine(services.DefaultRatingConfig())
		now := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
		day := func(y int, m time.Month, d int) *time.Time {
			t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			return &t
		}

		Convey("A player with no activity starts at 1", func() {
			So(engine.NextStreak(0, nil, now), ShouldEqual, 1)
		})

		Convey("Activity yesterday extends the streak", func() {
			So(engine.NextStreak(4, day(2026, 3, 3), now), ShouldEqual, 5)
		})

		Convey("A second match on the same day holds the streak", func() {
			So(engine.NextStreak(4, day(2026, 3, 4), now), ShouldEqual, 4)
			So(engine.NextStreak(0, day(2026, 3, 4), now), ShouldEqual, 1)
		})

		Convey("A gap resets to 1", func() {
			So(engine.NextStreak(9, day(2026, 3, 1), now), ShouldEqual, 1)
		})

		Convey("The streak caps at the configured maximum", func() {
			So(engine.NextStreak(365, day(2026, 3, 3), now), ShouldEqual, 365)
		})
	})
}
