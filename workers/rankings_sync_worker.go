package workers

import (
	"context"
	"log"
	"time"

	"match-rating-system/services"
)

// PollRankings periodically rebuilds the Redis rankings from the players
// table. Per-match updates keep the cache warm; this loop heals it after a
// Redis restart or missed write.
func PollRankings(ctx context.Context, leaderboard *services.LeaderboardService, pollInterval time.Duration) {
	log.Println("Starting rankings rebuild polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Rankings polling stopped.")
			return
		case <-ticker.C:
			if err := leaderboard.Rebuild(ctx); err != nil {
				log.Printf("Rankings rebuild failed: %v", err)
			}
		}
	}
}
