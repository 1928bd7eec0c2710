package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"match-rating-system/utils"
)

// Notification kinds understood by the push gateway.
const (
	NotifyChallengeReceived = "challenge_received"
	NotifyChallengeAccepted = "challenge_accepted"
	NotifyChallengeDeclined = "challenge_declined"
	NotifyScoreSubmitted    = "score_submitted"
	NotifyScoreContested    = "score_contested"
	NotifyMatchCompleted    = "match_completed"
)

// Notifier delivers best-effort push signals. Implementations must never
// block a state transition: callers dispatch in a goroutine and log failures.
type Notifier interface {
	Notify(userID, kind, title, body string, payload map[string]string) error
}

// NoopNotifier is the injected default for tests and local development.
type NoopNotifier struct{}

func (NoopNotifier) Notify(userID, kind, title, body string, payload map[string]string) error {
	return nil
}

// PushGatewayNotifier forwards notifications to the external push service.
// The gateway owns device tokens and transport; we only hand over the
// recipient and the message.
type PushGatewayNotifier struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewPushGatewayNotifier() *PushGatewayNotifier {
	baseURL := os.Getenv("PUSH_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("PUSH_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("MATCH_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("MATCH_SERVICE_TOKEN environment variable is required for push delivery")
	}

	return &PushGatewayNotifier{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: utils.HTTPClient,
	}
}

func (n *PushGatewayNotifier) Notify(userID, kind, title, body string, payload map[string]string) error {
	reqBody, err := json.Marshal(map[string]interface{}{
		"user_id": userID,
		"kind":    kind,
		"title":   title,
		"body":    body,
		"data":    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequest("POST", n.BaseURL+"/api/v1/push", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", n.Token)

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call push service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}

// notifyAsync fires a notification without ever surfacing the outcome to the
// caller of a state transition. The transition already succeeded; a flaky
// push backend must not undo that.
func notifyAsync(n Notifier, userID, kind, title, body string, payload map[string]string) {
	if n == nil || userID == "" {
		return
	}
	go func() {
		if err := n.Notify(userID, kind, title, body, payload); err != nil {
			log.Printf("⚠️ [NOTIFY] %s to %s failed: %v", kind, userID, err)
		}
	}()
}
