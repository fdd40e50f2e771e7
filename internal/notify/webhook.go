package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/util"
)

var webhookClient = &http.Client{Timeout: 10 * time.Second}

// webhookPayload is the JSON body posted to the webhook URL.
type webhookPayload struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Target    string `json:"target,omitzero"`
	Message   string `json:"message,omitzero"`
	Timestamp string `json:"timestamp"`
}

// SendWebhook posts ev to webhookURL. An empty URL is skipped.
func SendWebhook(ctx context.Context, webhookURL string, ev Event) error {
	if !util.IsConfigured(webhookURL) {
		return nil
	}

	payload := webhookPayload{
		ID:        ev.ID,
		Event:     ev.Kind,
		Target:    ev.target(),
		Timestamp: ev.timestamp(),
	}
	if ev.Kind == EventTest {
		payload.Message = testMessage
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return util.WrapError("create webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := webhookClient.Do(req)
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// SendTestWebhook posts a test event. Unlike SendWebhook it fails without a URL.
func SendTestWebhook(ctx context.Context, webhookURL string) error {
	if webhookURL == "" {
		return errors.New("webhook URL not configured")
	}
	return SendWebhook(ctx, webhookURL, NewEvent(EventTest, time.Time{}))
}
