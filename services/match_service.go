package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"match-rating-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchService owns the match lifecycle state machine and is the only code
// path that applies rating updates. Every transition is a single
// read-modify-write transaction whose status-advancing UPDATE carries the
// expected prior status in its WHERE clause; that guard is what makes rating
// application at-most-once per match even under concurrent duplicate calls.
type MatchService struct {
	DB          *gorm.DB
	Engine      *RatingEngine
	Notifier    Notifier
	Leaderboard *LeaderboardService // optional; nil disables ranking sync

	// Injectable clock so calendar-day and calendar-week logic is testable.
	Now func() time.Time
}

func NewMatchService(db *gorm.DB, engine *RatingEngine, notifier Notifier) *MatchService {
	return &MatchService{
		DB:       db,
		Engine:   engine,
		Notifier: notifier,
		Now:      time.Now,
	}
}

// Create opens a pending match. The opponent may be supplied now or later
// via Accept.
func (s *MatchService) Create(creatorID string, opponentID, courtID *string) (*models.Match, error) {
	m := models.Match{
		ID:         uuid.NewString(),
		Status:     models.MatchStatusPending,
		CreatorID:  creatorID,
		OpponentID: opponentID,
		CourtID:    courtID,
	}
	if err := s.DB.Create(&m).Error; err != nil {
		return nil, err
	}

	if opponentID != nil {
		notifyAsync(s.Notifier, *opponentID, NotifyChallengeReceived,
			"🏀 New match", "You have been invited to a match.",
			map[string]string{"match_id": m.ID})
	}
	return &m, nil
}

// Accept fills in the opponent and moves pending → accepted.
func (s *MatchService) Accept(matchID, opponentID string) (*models.Match, error) {
	var m *models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = getMatchTx(tx, matchID)
		if err != nil {
			return err
		}
		if m.Status != models.MatchStatusPending {
			return invalidStatef("cannot accept match in status %s", m.Status)
		}
		if m.CreatorID == opponentID {
			return forbiddenf("cannot accept your own match")
		}
		if m.OpponentID != nil && *m.OpponentID != opponentID {
			return forbiddenf("match already has an opponent")
		}

		return s.advanceTx(tx, m, models.MatchStatusAccepted, map[string]interface{}{
			"opponent_id": opponentID,
		})
	})
	if err != nil {
		return nil, err
	}

	notifyAsync(s.Notifier, m.CreatorID, NotifyChallengeAccepted,
		"🏀 Match on!", "Your match was accepted.",
		map[string]string{"match_id": m.ID})
	return s.Get(matchID)
}

// SubmitScore records a self-reported score and parks the match in
// score_submitted until the other party confirms or contests. Valid from
// accepted and from contested (resubmission). A completed match's score is
// immutable.
func (s *MatchService) SubmitScore(matchID, submitterID string, scoreCreator, scoreOpponent int) (*models.Match, error) {
	if scoreCreator < 0 || scoreOpponent < 0 || scoreCreator == scoreOpponent {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidScore, scoreCreator, scoreOpponent)
	}

	var m *models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = getMatchTx(tx, matchID)
		if err != nil {
			return err
		}
		if m.Status == models.MatchStatusCompleted {
			return invalidStatef("match already completed; score is immutable")
		}
		if m.Status != models.MatchStatusAccepted && m.Status != models.MatchStatusContested {
			return invalidStatef("cannot submit score in status %s", m.Status)
		}
		if !m.HasParticipant(submitterID) {
			return forbiddenf("only participants may submit a score")
		}
		if m.OpponentID == nil {
			return invalidStatef("match has no opponent")
		}

		return s.advanceTx(tx, m, models.MatchStatusScoreSubmitted, map[string]interface{}{
			"score_creator":      scoreCreator,
			"score_opponent":     scoreOpponent,
			"score_submitter_id": submitterID,
		})
	})
	if err != nil {
		return nil, err
	}

	notifyAsync(s.Notifier, m.OtherParticipant(submitterID), NotifyScoreSubmitted,
		"📊 Score submitted", "Your opponent submitted a score. Confirm or contest!",
		map[string]string{"match_id": m.ID})
	return s.Get(matchID)
}

// ConfirmScore finalizes a submitted score. Only the non-submitting
// participant may confirm; the winner is derived from the higher score and
// ratings are applied exactly once.
func (s *MatchService) ConfirmScore(matchID, confirmerID string) (*models.Match, error) {
	var m *models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = getMatchTx(tx, matchID)
		if err != nil {
			return err
		}
		if m.Status != models.MatchStatusScoreSubmitted {
			return invalidStatef("cannot confirm match in status %s", m.Status)
		}
		if !m.HasParticipant(confirmerID) {
			return forbiddenf("only participants may confirm a score")
		}
		if m.ScoreSubmitterID != nil && *m.ScoreSubmitterID == confirmerID {
			return forbiddenf("the score submitter cannot confirm their own score")
		}

		winnerID := m.CreatorID
		if *m.ScoreOpponent > *m.ScoreCreator {
			winnerID = *m.OpponentID
		}
		return s.finalizeTx(tx, m, winnerID)
	})
	if err != nil {
		return nil, err
	}

	s.afterCompletion(m, m.OtherParticipant(confirmerID))
	return m, nil
}

// ContestScore rejects an opponent-submitted score before it has any rating
// effect: scores are cleared, the match returns to contested (resubmission
// allowed) and both participants' contested counters tick up.
func (s *MatchService) ContestScore(matchID, contesterID string) (*models.Match, error) {
	var m *models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = getMatchTx(tx, matchID)
		if err != nil {
			return err
		}
		if m.Status != models.MatchStatusScoreSubmitted {
			return invalidStatef("cannot contest match in status %s", m.Status)
		}
		if !m.HasParticipant(contesterID) {
			return forbiddenf("only participants may contest a score")
		}
		if m.ScoreSubmitterID != nil && *m.ScoreSubmitterID == contesterID {
			return forbiddenf("the score submitter cannot contest their own score")
		}

		if err := s.advanceTx(tx, m, models.MatchStatusContested, map[string]interface{}{
			"score_creator":      nil,
			"score_opponent":     nil,
			"score_submitter_id": nil,
			"winner_id":          nil,
		}); err != nil {
			return err
		}

		if err := incrementGamesContestedTx(tx, m.CreatorID); err != nil {
			return err
		}
		return incrementGamesContestedTx(tx, *m.OpponentID)
	})
	if err != nil {
		return nil, err
	}

	notifyAsync(s.Notifier, m.OtherParticipant(contesterID), NotifyScoreContested,
		"⚠️ Score contested", "Your submitted score was contested. You can resubmit.",
		map[string]string{"match_id": m.ID})
	return s.Get(matchID)
}

// Complete is the direct, lower-trust path: record only a winner, skipping
// score confirmation. Valid from accepted; shares the completed-status guard
// with ConfirmScore so ratings can never be applied twice.
func (s *MatchService) Complete(matchID, winnerID string) (*models.Match, error) {
	var m *models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = getMatchTx(tx, matchID)
		if err != nil {
			return err
		}
		if m.Status == models.MatchStatusCompleted {
			return invalidStatef("match already completed")
		}
		if m.Status != models.MatchStatusAccepted {
			return invalidStatef("cannot complete match in status %s", m.Status)
		}
		if !m.HasParticipant(winnerID) {
			return forbiddenf("winner must be a participant")
		}
		return s.finalizeTx(tx, m, winnerID)
	})
	if err != nil {
		return nil, err
	}

	s.afterCompletion(m, m.OtherParticipant(winnerID))
	return m, nil
}

// Cancel withdraws a match that never got going. Creator-only, pending-only.
func (s *MatchService) Cancel(matchID, requesterID string) (*models.Match, error) {
	var m *models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = getMatchTx(tx, matchID)
		if err != nil {
			return err
		}
		if m.Status != models.MatchStatusPending {
			return invalidStatef("cannot cancel match in status %s", m.Status)
		}
		if m.CreatorID != requesterID {
			return forbiddenf("only the creator may cancel a match")
		}
		return s.advanceTx(tx, m, models.MatchStatusCancelled, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(matchID)
}

// advanceTx flips the match status with the expected prior status in the
// WHERE clause. Zero affected rows means another transaction moved the match
// first; the caller's transaction aborts without partial effects.
func (s *MatchService) advanceTx(tx *gorm.DB, m *models.Match, newStatus string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": newStatus}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.Match{}).
		Where("id = ? AND status = ?", m.ID, m.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invalidStatef("match left status %s mid-transition", m.Status)
	}
	m.Status = newStatus
	return nil
}

// finalizeTx applies the one-and-only rating update for a match and flips it
// to completed. Shared by the confirm path and the direct complete path so
// both obey the same at-most-once rule.
func (s *MatchService) finalizeTx(tx *gorm.DB, m *models.Match, winnerID string) error {
	now := s.Now()
	loserID := m.OtherParticipant(winnerID)
	if loserID == "" {
		return invalidStatef("match has no opponent")
	}

	winner, err := getPlayerTx(tx, winnerID)
	if err != nil {
		return err
	}
	loser, err := getPlayerTx(tx, loserID)
	if err != nil {
		return err
	}

	ctx, err := s.pairContextTx(tx, m.ID, winnerID, loserID, now)
	if err != nil {
		return err
	}

	result := s.Engine.RatePair(
		RatedPlayer{Rating: winner.Rating, GamesPlayed: winner.GamesPlayed},
		RatedPlayer{Rating: loser.Rating, GamesPlayed: loser.GamesPlayed},
		ctx,
	)

	if err := s.advanceTx(tx, m, models.MatchStatusCompleted, map[string]interface{}{
		"winner_id":    winnerID,
		"completed_at": now,
	}); err != nil {
		return err
	}

	if err := setRatingTx(tx, winnerID, result.WinnerRating); err != nil {
		return err
	}
	if err := setRatingTx(tx, loserID, result.LoserRating); err != nil {
		return err
	}
	if err := incrementGamesPlayedTx(tx, winnerID); err != nil {
		return err
	}
	if err := incrementGamesPlayedTx(tx, loserID); err != nil {
		return err
	}
	if err := updateStreakTx(tx, s.Engine, winner, now); err != nil {
		return err
	}
	if err := updateStreakTx(tx, s.Engine, loser, now); err != nil {
		return err
	}

	if err := recordTx(tx, winnerID, m.ID, result.WinnerRating, result.WinnerDelta, result.DiversityMultiplier); err != nil {
		return err
	}
	if err := recordTx(tx, loserID, m.ID, result.LoserRating, result.LoserDelta, result.DiversityMultiplier); err != nil {
		return err
	}

	// Release the pairing so a rematch challenge stops hitting the
	// single-active-challenge conflict.
	if err := markChallengeCompletedByMatchTx(tx, m.ID); err != nil {
		return err
	}

	m.WinnerID = &winnerID
	m.CompletedAt = &now

	log.Printf("🏀 [MATCH] %s completed: %s %.2f (%+.3f), %s %.2f (%+.3f), mult=%.2f",
		m.ID, winnerID, result.WinnerRating, result.WinnerDelta,
		loserID, result.LoserRating, result.LoserDelta, result.DiversityMultiplier)
	return nil
}

// pairContextTx derives the familiarity and activity signals from the ledger:
// has this pair ever finished a match, how many times this calendar week, and
// is this the winner's first counted match today. The current match is
// excluded from every query.
func (s *MatchService) pairContextTx(tx *gorm.DB, matchID, winnerID, loserID string, now time.Time) (PairContext, error) {
	pairWhere := "((creator_id = ? AND opponent_id = ?) OR (creator_id = ? AND opponent_id = ?))"

	var everPlayed int64
	err := tx.Model(&models.Match{}).
		Where("status = ? AND id != ?", models.MatchStatusCompleted, matchID).
		Where(pairWhere, winnerID, loserID, loserID, winnerID).
		Count(&everPlayed).Error
	if err != nil {
		return PairContext{}, err
	}

	var thisWeek int64
	err = tx.Model(&models.Match{}).
		Where("status = ? AND id != ? AND completed_at >= ?", models.MatchStatusCompleted, matchID, startOfWeek(now)).
		Where(pairWhere, winnerID, loserID, loserID, winnerID).
		Count(&thisWeek).Error
	if err != nil {
		return PairContext{}, err
	}

	var winnerToday int64
	err = tx.Model(&models.Match{}).
		Where("status = ? AND id != ? AND completed_at >= ?", models.MatchStatusCompleted, matchID, startOfDay(now)).
		Where("(creator_id = ? OR opponent_id = ?)", winnerID, winnerID).
		Count(&winnerToday).Error
	if err != nil {
		return PairContext{}, err
	}

	return PairContext{
		NeverPlayed:      everPlayed == 0,
		GamesThisWeek:    int(thisWeek),
		WinnerFirstToday: winnerToday == 0,
	}, nil
}

// afterCompletion handles the post-transaction side effects: notify the
// counterpart and refresh the rankings. Both are best-effort.
func (s *MatchService) afterCompletion(m *models.Match, notifyUserID string) {
	notifyAsync(s.Notifier, notifyUserID, NotifyMatchCompleted,
		"🏆 Match completed", "The result is in. Check your new rating!",
		map[string]string{"match_id": m.ID})

	if s.Leaderboard != nil && m.OpponentID != nil {
		go s.Leaderboard.SyncPlayers(m.CreatorID, *m.OpponentID)
	}
}

// Get returns one match.
func (s *MatchService) Get(matchID string) (*models.Match, error) {
	var m models.Match
	if err := s.DB.Where("id = ?", matchID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("match %s", matchID)
		}
		return nil, err
	}
	return &m, nil
}

// ListForUser returns a user's matches, newest first.
func (s *MatchService) ListForUser(userID string, limit int) ([]models.Match, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var matches []models.Match
	err := s.DB.Where("creator_id = ? OR opponent_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}

// PendingConfirmationFor lists matches waiting on this user's confirmation:
// score submitted by the other party.
func (s *MatchService) PendingConfirmationFor(userID string) ([]models.Match, error) {
	var matches []models.Match
	err := s.DB.Where("status = ?", models.MatchStatusScoreSubmitted).
		Where("(creator_id = ? OR opponent_id = ?)", userID, userID).
		Where("score_submitter_id != ?", userID).
		Order("updated_at DESC").
		Find(&matches).Error
	return matches, err
}

func getMatchTx(tx *gorm.DB, matchID string) (*models.Match, error) {
	var m models.Match
	err := tx.Where("id = ?", matchID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("match %s", matchID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns Monday 00:00 of t's calendar week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
