// Package gmail provides the email node handler: send the current content as
// an email through the Gmail API using the owner's OAuth credential.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
)

const (
	// DefaultBaseURL is the Gmail API root for the acting user's mailbox.
	DefaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

	defaultTimeout = 30 * time.Second

	defaultSubject = "Orbit Workflow Result"

	// defaultBody is sent when no upstream node produced content.
	defaultBody = "Hello from Orbit Workflow!"
)

var (
	// ErrNoRecipient indicates the node configuration names no recipient.
	ErrNoRecipient = errors.New("no recipient provided")

	// ErrNotConnected indicates the acting user holds no Google credential.
	ErrNotConnected = errors.New("google account not connected")

	// ErrCredentialRejected indicates the stored token was refused by the API.
	ErrCredentialRejected = errors.New("google credential expired or revoked")
)

// Handler sends one email whose body wraps the content slot.
type Handler struct {
	To      string
	Subject string
	BaseURL string

	client *http.Client
}

// NewHandler creates a Gmail send handler from node configuration.
func NewHandler(config map[string]any) (*Handler, error) {
	to, _ := config["to"].(string)
	if to == "" {
		// Old editor versions saved the recipient under "emailTo".
		to, _ = config["emailTo"].(string)
	}

	if to == "" {
		return nil, fmt.Errorf("email node: %w", ErrNoRecipient)
	}

	subject, _ := config["subject"].(string)
	if subject == "" {
		subject = defaultSubject
	}

	baseURL, _ := config["baseUrl"].(string)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Handler{
		To:      to,
		Subject: subject,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Execute builds the raw MIME message and sends it through the Gmail API.
func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, user *models.User, logger *slog.Logger) error {
	logger = logger.With("module", "gmail_handler", "to", h.To)
	logger.InfoContext(ctx, "Executing Gmail send")

	execCtx.Info("", "📨 Sending Output to %s...", h.To)

	if user == nil || !user.HasGoogleCredential() {
		return ErrNotConnected
	}

	body := execCtx.Content()
	if body == "" {
		body = defaultBody
	}

	raw := BuildRawMessage(h.To, h.Subject, body)

	if err := h.send(ctx, user.GoogleAccessToken, raw); err != nil {
		return fmt.Errorf("gmail send failed: %w", err)
	}

	preview := body
	if len(preview) > 30 {
		preview = preview[:30] + "..."
	}

	execCtx.Success("", "Sent: %q", preview)
	logger.InfoContext(ctx, "Gmail send completed")

	return nil
}

// BuildRawMessage assembles an RFC 2822 message and encodes it the way the
// Gmail API expects: base64url without padding. The subject is MIME
// encoded-word wrapped so non-ASCII subjects survive transport.
func BuildRawMessage(to, subject, body string) string {
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))

	message := strings.Join([]string{
		fmt.Sprintf("To: <%s>", to),
		"Subject: " + encodedSubject,
		"Content-Type: text/html; charset=utf-8",
		"MIME-Version: 1.0",
		"",
		body,
	}, "\r\n")

	return base64.RawURLEncoding.EncodeToString([]byte(message))
}

func (h *Handler) send(ctx context.Context, token, raw string) error {
	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return fmt.Errorf("failed to encode send payload: %w", err)
	}

	endpoint := h.BaseURL + "/users/me/messages/send"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrCredentialRejected
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("gmail API returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}
