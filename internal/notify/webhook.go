package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookDispatcher POSTs notifications to the messaging service that owns
// template rendering and delivery. Slow or failing deliveries must not stall
// business operations, so the client timeout is short and bounded.
type WebhookDispatcher struct {
	endpoint string
	client   *http.Client
}

func NewWebhookDispatcher(endpoint string) *WebhookDispatcher {
	return &WebhookDispatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookEnvelope struct {
	Kind    string  `json:"kind"`
	Payload Payload `json:"payload"`
}

func (d *WebhookDispatcher) Send(ctx context.Context, kind Kind, payload Payload) error {
	body, err := json.Marshal(webhookEnvelope{Kind: string(kind), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}
