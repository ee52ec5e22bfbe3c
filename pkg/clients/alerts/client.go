package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/agrotrack/feedengine/internal/config"
	"github.com/agrotrack/feedengine/internal/domain/models"
)

// Client delivers shortage alerts to the configured webhook.
type Client interface {
	SendShortageAlert(ctx context.Context, alert ShortageAlert) error
}

// ShortageAlert is the webhook payload describing the days an auto run skipped
// for lack of stock.
type ShortageAlert struct {
	RunID        string              `json:"runId"`
	Actor        string              `json:"actor"`
	SkippedDates []models.SkippedDay `json:"skippedDates"`
	OccurredAt   time.Time           `json:"occurredAt"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewClient builds an alert webhook client using the provided configuration values.
func NewClient(cfg config.AlertsConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		webhookURL: cfg.WebhookURL,
	}
}

// SendShortageAlert posts the alert payload to the webhook.
func (c *WebhookClient) SendShortageAlert(ctx context.Context, alert ShortageAlert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("send shortage alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("shortage alert webhook error: code=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
