// Package notify sends verification messages through the WhatsApp gateway.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WhatsAppClient posts verification codes to a WhatsApp message gateway.
type WhatsAppClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewWhatsAppClient creates a gateway client.
func NewWhatsAppClient(baseURL, token string) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// SendVerificationCode implements service.CodeSender.
func (c *WhatsAppClient) SendVerificationCode(ctx context.Context, phone string, code string) error {
	payload, err := json.Marshal(sendMessageRequest{
		To:   phone,
		Body: fmt.Sprintf("Tu código de verificación es %s", code),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
