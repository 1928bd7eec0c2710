package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"match-rating-system/services"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRatingConfig(t *testing.T) {
	Convey("The default config mirrors the production tuning", t, func() {
		cfg := services.DefaultRatingConfig()
		So(cfg.Scale, ShouldEqual, 1.0)
		So(cfg.StartRating, ShouldEqual, 3.0)
		So(cfg.Floor, ShouldEqual, 1.0)
		So(cfg.Ceiling, ShouldEqual, 5.0)
		So(cfg.KPlacement, ShouldEqual, 0.20)
		So(cfg.RematchSchedule, ShouldResemble, []float64{1.0, 0.5, 0.25, 0.1})
		So(cfg.FirstGameTodayBonus, ShouldEqual, 0.02)
	})

	Convey("Given a partial YAML file", t, func() {
		path := filepath.Join(t.TempDir(), "rating.yaml")
		content := "k_placement: 0.3\nrematch_schedule: [1.0, 0.6]\nstart_rating: ${TEST_START_RATING}\n"
		So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)
		t.Setenv("TEST_START_RATING", "3.5")

		Convey("Loading it overrides what is set and defaults the rest", func() {
			cfg, err := services.LoadRatingConfig(path)
			So(err, ShouldBeNil)

			So(cfg.KPlacement, ShouldEqual, 0.3)
			So(cfg.RematchSchedule, ShouldResemble, []float64{1.0, 0.6})
			So(cfg.StartRating, ShouldEqual, 3.5)

			So(cfg.KEarly, ShouldEqual, 0.10)
			So(cfg.Ceiling, ShouldEqual, 5.0)
		})
	})

	Convey("A missing file is an error", t, func() {
		_, err := services.LoadRatingConfig("/nonexistent/rating.yaml")
		So(err, ShouldNotBeNil)
	})
}
