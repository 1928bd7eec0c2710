// services/scheduler.go
package services

import (
	"log"
	"time"

	"match-rating-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartExpiryScheduler sweeps stale pending challenges into cancelled so the
// single-active-challenge rule cannot block a pairing forever behind an
// abandoned invite. Opt-in via config; maxAge controls how long a pending
// challenge may sit unanswered. Matches are untouched: an accepted match has
// no automatic expiry.
func (s *ChallengeService) StartExpiryScheduler(maxAge time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-maxAge)
			res := s.DB.Model(&models.Challenge{}).
				Where("status = ? AND created_at < ?", models.ChallengeStatusPending, cutoff).
				Update("status", models.ChallengeStatusCancelled)
			if res.Error != nil {
				log.Printf("[Scheduler] challenge expiry sweep failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Expired %d stale pending challenges", res.RowsAffected)
			}
		}),
	)
}
