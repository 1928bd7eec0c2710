package services_test

import (
	"context"
	"testing"

	"match-rating-system/models"
	"match-rating-system/services"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLeaderboardSQLFallback(t *testing.T) {
	Convey("Given rated players and no Redis client", t, func() {
		db := newTestDB(t)
		lb := services.NewLeaderboardService(db, nil)
		seedPlayer(t, db, "alice", "Alice", 4.2, 40)
		seedPlayer(t, db, "bob", "Bob", 3.1, 12)
		seedPlayer(t, db, "carol", "Carol", 4.7, 25)

		city := "Kyiv"
		So(db.Model(&models.Player{}).Where("id = ?", "bob").Update("city", city).Error, ShouldBeNil)

		Convey("Top serves the global rankings from SQL, highest first", func() {
			entries, err := lb.Top(context.Background(), "", 10)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 3)
			So(entries[0].PlayerID, ShouldEqual, "carol")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].PlayerID, ShouldEqual, "alice")
			So(entries[2].PlayerID, ShouldEqual, "bob")
		})

		Convey("A city scope narrows the board", func() {
			entries, err := lb.Top(context.Background(), city, 10)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].PlayerID, ShouldEqual, "bob")
		})

		Convey("The limit is respected", func() {
			entries, err := lb.Top(context.Background(), "", 2)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
		})

		Convey("Cache writes are silent no-ops without Redis", func() {
			So(lb.SetRating(context.Background(), "alice", 4.3, ""), ShouldBeNil)
			So(lb.Rebuild(context.Background()), ShouldBeNil)
		})
	})
}
