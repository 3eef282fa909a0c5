// Package notifier delivers expiry reminders to an external webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/seatwise/seatwise/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("notifier_not_configured")

// Reminder is one expiring subscription in a dispatch batch.
type Reminder struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name,omitempty"`
	EndDate        string `json:"end_date"`
	DaysLeft       int    `json:"days_left"`
	Window         string `json:"window"`
}

type dispatchRequest struct {
	Reminders []Reminder `json:"reminders"`
}

type dispatchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Client posts reminder batches to the configured endpoint with a bearer
// token. A client with no endpoint is valid but refuses to send.
type Client struct {
	endpoint string
	token    string
	log      *zap.Logger
	client   *http.Client
}

func New(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		endpoint: cfg.NotifierEndpoint,
		token:    cfg.NotifierToken,
		log:      log.Named("notifier"),
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

func (c *Client) Send(ctx context.Context, reminders []Reminder) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	if len(reminders) == 0 {
		return nil
	}

	payload, err := json.Marshal(dispatchRequest{Reminders: reminders})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notifier_request_failed_status_%d", resp.StatusCode)
	}

	var body dispatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if !body.Success {
		if body.Error != "" {
			return fmt.Errorf("notifier_rejected: %s", body.Error)
		}
		return errors.New("notifier_rejected")
	}

	c.log.Info("reminders dispatched", zap.Int("count", len(reminders)))
	return nil
}

var Module = fx.Module("notifier",
	fx.Provide(New),
)
