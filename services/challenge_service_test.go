package services_test

import (
	"testing"

	"match-rating-system/models"
	"match-rating-system/services"

	. "github.com/smartystreets/goconvey/convey"
)

func TestChallengeCreate(t *testing.T) {
	Convey("Given two players", t, func() {
		db := newTestDB(t)
		svc := newChallengeService(db)
		seedPlayer(t, db, "alice", "Alice", 3.0, 0)
		seedPlayer(t, db, "bob", "Bob", 3.0, 0)

		Convey("Alice can challenge Bob", func() {
			ch, err := svc.Create("alice", "bob", strPtr("loser buys drinks"), nil)
			So(err, ShouldBeNil)
			So(ch.Status, ShouldEqual, models.ChallengeStatusPending)
			So(ch.FromUserID, ShouldEqual, "alice")
			So(ch.ToUserID, ShouldEqual, "bob")

			Convey("But not challenge him again while the first is open", func() {
				_, err := svc.Create("alice", "bob", nil, nil)
				So(err, ShouldWrap, services.ErrConflict)
			})

			Convey("And Bob cannot counter-challenge while it is open", func() {
				_, err := svc.Create("bob", "alice", nil, nil)
				So(err, ShouldWrap, services.ErrConflict)
			})

			Convey("After Alice withdraws it, a new challenge is allowed", func() {
				_, err := svc.Cancel(ch.ID, "alice")
				So(err, ShouldBeNil)

				_, err = svc.Create("bob", "alice", nil, nil)
				So(err, ShouldBeNil)
			})
		})

		Convey("Self-challenges are rejected", func() {
			_, err := svc.Create("alice", "alice", nil, nil)
			So(err, ShouldWrap, services.ErrForbidden)
		})
	})
}

func TestChallengeAccept(t *testing.T) {
	Convey("Given a pending challenge with a court attached", t, func() {
		db := newTestDB(t)
		svc := newChallengeService(db)
		seedPlayer(t, db, "alice", "Alice", 3.0, 0)
		seedPlayer(t, db, "bob", "Bob", 3.0, 0)

		ch, err := svc.Create("alice", "bob", nil, strPtr("court-1"))
		So(err, ShouldBeNil)

		Convey("When Bob accepts", func() {
			accepted, m, err := svc.Accept(ch.ID, "bob")
			So(err, ShouldBeNil)

			Convey("Then the challenge links a ready-to-play match", func() {
				So(accepted.Status, ShouldEqual, models.ChallengeStatusAccepted)
				So(*accepted.MatchID, ShouldEqual, m.ID)

				So(m.Status, ShouldEqual, models.MatchStatusAccepted)
				So(m.CreatorID, ShouldEqual, "alice")
				So(*m.OpponentID, ShouldEqual, "bob")
				So(*m.CourtID, ShouldEqual, "court-1")
			})

			Convey("And the pair stays locked while the match is open", func() {
				_, err := svc.Create("alice", "bob", nil, nil)
				So(err, ShouldWrap, services.ErrConflict)
			})

			Convey("But finishing the match frees the pair for a rematch", func() {
				matchSvc := newMatchService(db)
				_, err := matchSvc.SubmitScore(m.ID, "alice", 21, 18)
				So(err, ShouldBeNil)
				_, err = matchSvc.ConfirmScore(m.ID, "bob")
				So(err, ShouldBeNil)

				var done models.Challenge
				So(db.First(&done, "id = ?", ch.ID).Error, ShouldBeNil)
				So(done.Status, ShouldEqual, models.ChallengeStatusCompleted)

				_, err = svc.Create("bob", "alice", nil, nil)
				So(err, ShouldBeNil)
			})

			Convey("And accepting a second time fails", func() {
				_, _, err := svc.Accept(ch.ID, "bob")
				So(err, ShouldWrap, services.ErrInvalidState)
			})
		})

		Convey("Alice cannot accept her own challenge", func() {
			_, _, err := svc.Accept(ch.ID, "alice")
			So(err, ShouldWrap, services.ErrForbidden)
		})

		Convey("A bystander cannot accept it either", func() {
			_, _, err := svc.Accept(ch.ID, "carol")
			So(err, ShouldWrap, services.ErrForbidden)
		})
	})
}

func TestChallengeDeclineAndCancel(t *testing.T) {
	Convey("Given a pending challenge", t, func() {
		db := newTestDB(t)
		svc := newChallengeService(db)
		seedPlayer(t, db, "alice", "Alice", 3.0, 0)
		seedPlayer(t, db, "bob", "Bob", 3.0, 0)

		ch, err := svc.Create("alice", "bob", nil, nil)
		So(err, ShouldBeNil)

		Convey("Bob can decline it", func() {
			declined, err := svc.Decline(ch.ID, "bob")
			So(err, ShouldBeNil)
			So(declined.Status, ShouldEqual, models.ChallengeStatusDeclined)

			Convey("And a declined challenge cannot be accepted afterwards", func() {
				_, _, err := svc.Accept(ch.ID, "bob")
				So(err, ShouldWrap, services.ErrInvalidState)
			})
		})

		Convey("Alice cannot decline her own challenge", func() {
			_, err := svc.Decline(ch.ID, "alice")
			So(err, ShouldWrap, services.ErrForbidden)
		})

		Convey("Alice can cancel it", func() {
			cancelled, err := svc.Cancel(ch.ID, "alice")
			So(err, ShouldBeNil)
			So(cancelled.Status, ShouldEqual, models.ChallengeStatusCancelled)
		})

		Convey("Bob cannot cancel Alice's challenge", func() {
			_, err := svc.Cancel(ch.ID, "bob")
			So(err, ShouldWrap, services.ErrForbidden)
		})

		Convey("Unknown challenge ids come back not-found", func() {
			_, err := svc.Decline("no-such-challenge", "bob")
			So(err, ShouldWrap, services.ErrNotFound)
		})
	})
}

func TestChallengeListings(t *testing.T) {
	Convey("Given challenges in several states", t, func() {
		db := newTestDB(t)
		svc := newChallengeService(db)
		seedPlayer(t, db, "alice", "Alice", 3.0, 0)
		seedPlayer(t, db, "bob", "Bob", 3.0, 0)
		seedPlayer(t, db, "carol", "Carol", 3.0, 0)

		incoming, err := svc.Create("bob", "alice", nil, nil)
		So(err, ShouldBeNil)
		outgoing, err := svc.Create("alice", "carol", nil, nil)
		So(err, ShouldBeNil)
		declined, err := svc.Create("carol", "bob", nil, nil)
		So(err, ShouldBeNil)
		_, err = svc.Decline(declined.ID, "bob")
		So(err, ShouldBeNil)

		Convey("PendingForUser shows only incoming pending challenges", func() {
			forAlice, err := svc.PendingForUser("alice")
			So(err, ShouldBeNil)
			So(len(forAlice), ShouldEqual, 1)
			So(forAlice[0].ID, ShouldEqual, incoming.ID)
		})

		Convey("AllForUser shows open challenges in both directions", func() {
			forAlice, err := svc.AllForUser("alice")
			So(err, ShouldBeNil)
			So(len(forAlice), ShouldEqual, 2)

			ids := []string{forAlice[0].ID, forAlice[1].ID}
			So(ids, ShouldContain, incoming.ID)
			So(ids, ShouldContain, outgoing.ID)
		})

		Convey("Resolved challenges drop out of the listings", func() {
			forBob, err := svc.AllForUser("bob")
			So(err, ShouldBeNil)
			So(len(forBob), ShouldEqual, 1)
			So(forBob[0].ID, ShouldEqual, incoming.ID)
		})
	})
}
