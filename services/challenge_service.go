package services

import (
	"errors"
	"log"

	"match-rating-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService handles the social "want to play" flow that feeds the
// match ledger. It enforces the one-unresolved-challenge-per-pair rule.
type ChallengeService struct {
	DB        *gorm.DB
	Notifier  Notifier
	Messenger Messenger
}

func NewChallengeService(db *gorm.DB, notifier Notifier, messenger Messenger) *ChallengeService {
	return &ChallengeService{DB: db, Notifier: notifier, Messenger: messenger}
}

// Create proposes a match to another player. Conflicts if an unresolved
// challenge already exists between the two users in either direction:
// pending, or accepted with a match that has not finished yet.
func (s *ChallengeService) Create(fromUserID, toUserID string, message, courtID *string) (*models.Challenge, error) {
	if fromUserID == toUserID {
		return nil, forbiddenf("cannot challenge yourself")
	}

	var ch models.Challenge
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		unresolved, err := hasUnresolvedChallengeTx(tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if unresolved {
			return conflictf("an active challenge already exists with this player")
		}

		ch = models.Challenge{
			ID:         uuid.NewString(),
			FromUserID: fromUserID,
			ToUserID:   toUserID,
			Message:    message,
			CourtID:    courtID,
			Status:     models.ChallengeStatusPending,
		}
		return tx.Create(&ch).Error
	})
	if err != nil {
		return nil, err
	}

	notifyAsync(s.Notifier, toUserID, NotifyChallengeReceived,
		"🏀 Challenge!", "Someone wants to play you 1-on-1.",
		map[string]string{"challenge_id": ch.ID})

	if message != nil && *message != "" {
		go func() {
			if err := s.Messenger.SendMessage(fromUserID, toUserID, *message, ""); err != nil {
				log.Printf("⚠️ [CHALLENGE] message delivery failed for %s: %v", ch.ID, err)
			}
		}()
	}
	return &ch, nil
}

// Accept turns a pending challenge into a live match. Both participants are
// already known, so the created match starts in accepted. Recipient-only.
func (s *ChallengeService) Accept(challengeID, userID string) (*models.Challenge, *models.Match, error) {
	var (
		ch models.Challenge
		m  models.Match
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := getChallengeTx(tx, challengeID, &ch); err != nil {
			return err
		}
		if ch.ToUserID != userID {
			return forbiddenf("only the challenged player may accept")
		}
		if ch.Status != models.ChallengeStatusPending {
			return invalidStatef("challenge is %s, not pending", ch.Status)
		}

		m = models.Match{
			ID:         uuid.NewString(),
			Status:     models.MatchStatusAccepted,
			CreatorID:  ch.FromUserID,
			OpponentID: &ch.ToUserID,
			CourtID:    ch.CourtID,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", challengeID, models.ChallengeStatusPending).
			Updates(map[string]interface{}{
				"status":   models.ChallengeStatusAccepted,
				"match_id": m.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidStatef("challenge left pending mid-accept")
		}
		ch.Status = models.ChallengeStatusAccepted
		ch.MatchID = &m.ID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	notifyAsync(s.Notifier, ch.FromUserID, NotifyChallengeAccepted,
		"🏀 Challenge accepted!", "Your challenge was accepted. Game on.",
		map[string]string{"challenge_id": ch.ID, "match_id": m.ID})
	return &ch, &m, nil
}

// Decline rejects a pending challenge. Recipient-only.
func (s *ChallengeService) Decline(challengeID, userID string) (*models.Challenge, error) {
	ch, err := s.resolvePending(challengeID, userID, false, models.ChallengeStatusDeclined)
	if err != nil {
		return nil, err
	}

	notifyAsync(s.Notifier, ch.FromUserID, NotifyChallengeDeclined,
		"Challenge declined", "Your challenge was declined.",
		map[string]string{"challenge_id": ch.ID})
	return ch, nil
}

// Cancel withdraws a pending challenge. Sender-only.
func (s *ChallengeService) Cancel(challengeID, userID string) (*models.Challenge, error) {
	return s.resolvePending(challengeID, userID, true, models.ChallengeStatusCancelled)
}

func (s *ChallengeService) resolvePending(challengeID, userID string, bySender bool, newStatus string) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := getChallengeTx(tx, challengeID, &ch); err != nil {
			return err
		}
		if bySender && ch.FromUserID != userID {
			return forbiddenf("only the sender may cancel a challenge")
		}
		if !bySender && ch.ToUserID != userID {
			return forbiddenf("only the challenged player may decline")
		}
		if ch.Status != models.ChallengeStatusPending {
			return invalidStatef("challenge is %s, not pending", ch.Status)
		}

		res := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", challengeID, models.ChallengeStatusPending).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidStatef("challenge left pending mid-update")
		}
		ch.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// PendingForUser lists incoming challenges awaiting this user's answer.
func (s *ChallengeService) PendingForUser(userID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.DB.Where("to_user_id = ? AND status = ?", userID, models.ChallengeStatusPending).
		Order("created_at DESC").
		Find(&challenges).Error
	return challenges, err
}

// AllForUser lists a user's open challenges, sent and received.
func (s *ChallengeService) AllForUser(userID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.DB.Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Where("status IN ?", []string{models.ChallengeStatusPending, models.ChallengeStatusAccepted}).
		Order("created_at DESC").
		Find(&challenges).Error
	return challenges, err
}

// markChallengeCompletedByMatchTx is invoked by the match ledger when a
// linked match completes, so the unresolved-challenge check stops blocking
// rematches between the same pair.
func markChallengeCompletedByMatchTx(tx *gorm.DB, matchID string) error {
	return tx.Model(&models.Challenge{}).
		Where("match_id = ?", matchID).
		Update("status", models.ChallengeStatusCompleted).Error
}

// hasUnresolvedChallengeTx checks both directions of a pairing for a
// challenge that is still in play: pending, or accepted whose match has not
// reached a terminal status yet.
func hasUnresolvedChallengeTx(tx *gorm.DB, a, b string) (bool, error) {
	openMatchStatuses := []string{
		models.MatchStatusPending,
		models.MatchStatusAccepted,
		models.MatchStatusScoreSubmitted,
		models.MatchStatusContested,
	}

	var count int64
	err := tx.Model(&models.Challenge{}).
		Joins("LEFT JOIN matches ON matches.id = challenges.match_id").
		Where("((challenges.from_user_id = ? AND challenges.to_user_id = ?) OR (challenges.from_user_id = ? AND challenges.to_user_id = ?))", a, b, b, a).
		Where("challenges.status = ? OR (challenges.status = ? AND (challenges.match_id IS NULL OR matches.status IN ?))",
			models.ChallengeStatusPending, models.ChallengeStatusAccepted, openMatchStatuses).
		Count(&count).Error
	return count > 0, err
}

func getChallengeTx(tx *gorm.DB, challengeID string, out *models.Challenge) error {
	err := tx.Where("id = ?", challengeID).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("challenge %s", challengeID)
	}
	return err
}
