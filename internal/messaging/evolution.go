// Package messaging provides the outbound WhatsApp delivery client for the
// Evolution API gateway. Delivery is best-effort: at most one send attempt is
// made per inbound message, and failures are reported to the caller rather
// than retried or queued.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/config"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/sysutil"
)

// ErrDeliveryFailed indicates the gateway rejected or failed the send.
var ErrDeliveryFailed = errors.New("message delivery failed")

// EvolutionClient posts text messages through an Evolution API instance.
type EvolutionClient struct {
	baseURL  string
	apiKey   string
	instance string
	client   *http.Client
}

// NewEvolutionClient builds a delivery client from configuration.
func NewEvolutionClient(cfg config.EvolutionConfig) *EvolutionClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &EvolutionClient{
		baseURL:  cfg.URL,
		apiKey:   cfg.APIKey,
		instance: cfg.Instance,
		client:   &http.Client{Timeout: timeout},
	}
}

// SendText delivers text to the given number through the configured
// instance. Non-2xx gateway responses map to ErrDeliveryFailed wrapped with
// the status so callers can branch on the sentinel.
func (c *EvolutionClient) SendText(ctx context.Context, number, text string) error {
	return c.SendTextVia(ctx, c.instance, number, text)
}

// SendTextVia is SendText with an explicit instance, used when the webhook
// payload names the instance that received the inbound message.
func (c *EvolutionClient) SendTextVia(ctx context.Context, instance, number, text string) error {
	instance = sysutil.FirstNonEmpty(instance, c.instance)
	body, _ := json.Marshal(map[string]string{
		"number": number,
		"text":   text,
	})
	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: gateway returned %s", ErrDeliveryFailed, resp.Status)
	}
	return nil
}
