package services_test

import (
	"testing"

	"match-rating-system/services"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCourtService(t *testing.T) {
	Convey("Given the court directory", t, func() {
		db := newTestDB(t)
		svc := services.NewCourtService(db)

		Convey("Creating a court derives a URL-safe slug", func() {
			court, err := svc.Create("Rucker Park", "New York")
			So(err, ShouldBeNil)
			So(court.Slug, ShouldEqual, "rucker-park-new-york")

			Convey("And the court is findable by that slug", func() {
				found, err := svc.BySlug("rucker-park-new-york")
				So(err, ShouldBeNil)
				So(found.ID, ShouldEqual, court.ID)
			})
		})

		Convey("Listing filters by city", func() {
			_, err := svc.Create("Rucker Park", "New York")
			So(err, ShouldBeNil)
			_, err = svc.Create("Venice Beach", "Los Angeles")
			So(err, ShouldBeNil)

			ny, err := svc.ListByCity("New York", 0)
			So(err, ShouldBeNil)
			So(len(ny), ShouldEqual, 1)

			all, err := svc.ListByCity("", 0)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 2)
		})

		Convey("An unknown slug reports not-found", func() {
			_, err := svc.BySlug("nowhere")
			So(err, ShouldWrap, services.ErrNotFound)
		})
	})
}
