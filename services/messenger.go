package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"match-rating-system/utils"
)

// Messenger delivers an optional free-text message alongside a challenge via
// the external chat collaborator.
type Messenger interface {
	SendMessage(fromUserID, toUserID, text string, relatedMatchID string) error
}

type NoopMessenger struct{}

func (NoopMessenger) SendMessage(fromUserID, toUserID, text string, relatedMatchID string) error {
	return nil
}

// ChatServiceMessenger posts messages to the messaging service.
type ChatServiceMessenger struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewChatServiceMessenger() *ChatServiceMessenger {
	return &ChatServiceMessenger{
		BaseURL:    os.Getenv("CHAT_SERVICE_URL"),
		Token:      os.Getenv("MATCH_SERVICE_TOKEN"),
		HTTPClient: utils.HTTPClient,
	}
}

func (m *ChatServiceMessenger) SendMessage(fromUserID, toUserID, text string, relatedMatchID string) error {
	if m.BaseURL == "" {
		return nil // chat collaborator not configured
	}

	body, err := json.Marshal(map[string]string{
		"from":     fromUserID,
		"to":       toUserID,
		"text":     text,
		"match_id": relatedMatchID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequest("POST", m.BaseURL+"/api/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", m.Token)

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call chat service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat service returned status %d", resp.StatusCode)
	}
	return nil
}
