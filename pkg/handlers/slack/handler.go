// Package slack provides the slack node handler: post the computed message to
// an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
)

const (
	defaultTimeout = 15 * time.Second

	// messagePrefix brands webhook messages so channel readers can tell
	// automation output from humans.
	messagePrefix = "🤖 *Orbit Bot:* "

	// defaultMessage is posted when neither a static message nor upstream
	// content exists.
	defaultMessage = "Hello from Orbit Workflow!"
)

// ErrNoWebhook indicates the node configuration carries no webhook URL.
var ErrNoWebhook = errors.New("no webhookUrl provided")

// Handler posts a message to a Slack incoming webhook. A static message from
// the node configuration wins over the content slot.
type Handler struct {
	WebhookURL string
	Message    string

	client *http.Client
}

// NewHandler creates a Slack handler from node configuration.
func NewHandler(config map[string]any) (*Handler, error) {
	webhookURL, _ := config["webhookUrl"].(string)
	if webhookURL == "" {
		// Old editor versions saved the target under "slackWebhook".
		webhookURL, _ = config["slackWebhook"].(string)
	}

	if webhookURL == "" {
		return nil, fmt.Errorf("slack node: %w", ErrNoWebhook)
	}

	message, _ := config["message"].(string)

	return &Handler{
		WebhookURL: webhookURL,
		Message:    message,
		client:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Execute posts the computed message to the webhook.
func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, _ *models.User, logger *slog.Logger) error {
	logger = logger.With("module", "slack_handler")
	logger.InfoContext(ctx, "Executing Slack send")

	message := h.Message
	if message == "" {
		message = execCtx.Content()
	}

	if message == "" {
		message = defaultMessage
	}

	execCtx.Info("", "📨 Sending Output to Slack Channel...")

	payload, err := json.Marshal(map[string]string{"text": messagePrefix + message})
	if err != nil {
		return fmt.Errorf("failed to encode slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	execCtx.Success("", "Slack Message Sent!")
	logger.InfoContext(ctx, "Slack send completed")

	return nil
}
