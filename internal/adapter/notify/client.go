package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Notifier delivers customer notices once the order change is committed.
type Notifier interface {
	Deliver(ctx context.Context, notice model.Notice) error
}

// DeliveryError reports a rejected webhook call.
type DeliveryError struct {
	Status int
	Body   string
}

func (e DeliveryError) Error() string {
	return fmt.Sprintf("notify webhook returned %d: %s", e.Status, e.Body)
}

// WebhookClient posts notices as JSON to a configured endpoint.
type WebhookClient struct {
	endpoint   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type payload struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
	Total       string `json:"total"`
	ItemCount   int    `json:"item_count"`
	CreatedAt   string `json:"created_at"`
}

// NewWebhookClient creates WebhookClient with default timeout.
func NewWebhookClient(endpoint string, logger *slog.Logger) (*WebhookClient, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse notify url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("notify url must be absolute")
	}
	return &WebhookClient{
		endpoint: parsed,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Deliver posts notice to the webhook.
func (c *WebhookClient) Deliver(ctx context.Context, notice model.Notice) error {
	body, err := json.Marshal(payload{
		ID:          notice.ID,
		Kind:        string(notice.Kind),
		OrderNumber: notice.OrderNumber,
		Email:       notice.Email,
		Total:       notice.Total.StringFixed(2),
		ItemCount:   notice.ItemCount,
		CreatedAt:   notice.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", notice.ID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	c.logger.Error("notice delivery rejected",
		slog.String("order", notice.OrderNumber),
		slog.String("kind", string(notice.Kind)),
		slog.Int("status", resp.StatusCode),
	)
	return DeliveryError{Status: resp.StatusCode, Body: string(raw)}
}

// LogNotifier records notices in the log when no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Deliver(ctx context.Context, notice model.Notice) error {
	n.logger.InfoContext(ctx, "order notice",
		slog.String("id", notice.ID),
		slog.String("kind", string(notice.Kind)),
		slog.String("order", notice.OrderNumber),
		slog.String("email", notice.Email),
		slog.String("total", notice.Total.StringFixed(2)),
	)
	return nil
}
