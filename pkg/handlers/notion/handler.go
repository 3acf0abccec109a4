// Package notion provides the notion node handler: create one page in a
// database whose body is the content produced by earlier nodes.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
)

const (
	// DefaultBaseURL is the Notion REST API root.
	DefaultBaseURL = "https://api.notion.com/v1"

	// apiVersion is the Notion-Version header value the payloads target.
	apiVersion = "2022-06-28"

	defaultTimeout = 30 * time.Second

	// maxBodyLength bounds the page body; Notion rejects rich text blocks
	// above 2000 characters.
	maxBodyLength = 2000
)

var (
	// ErrNoDatabaseID indicates the node configuration names no database.
	ErrNoDatabaseID = errors.New("no databaseId provided")

	// ErrNotConnected indicates the acting user holds no Notion credential.
	ErrNotConnected = errors.New("notion workspace not connected")

	// ErrCredentialRejected indicates the stored token was refused by the API.
	ErrCredentialRejected = errors.New("notion credential expired or revoked")
)

// Handler creates a Notion page from the current content slot.
type Handler struct {
	DatabaseID string
	Title      string
	BaseURL    string

	client *http.Client
}

// NewHandler creates a Notion write handler from node configuration.
func NewHandler(config map[string]any) (*Handler, error) {
	databaseID, _ := config["databaseId"].(string)
	if databaseID == "" {
		return nil, fmt.Errorf("notion node: %w", ErrNoDatabaseID)
	}

	title, _ := config["title"].(string)
	if title == "" {
		title = "Orbit Workflow Result"
	}

	baseURL, _ := config["baseUrl"].(string)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Handler{
		DatabaseID: databaseID,
		Title:      title,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Execute creates one page whose paragraph body is the content slot.
func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, user *models.User, logger *slog.Logger) error {
	logger = logger.With("module", "notion_handler", "database_id", h.DatabaseID)
	logger.InfoContext(ctx, "Executing Notion write")

	execCtx.Info("", "📝 Notion: Creating page in database %s...", h.DatabaseID)

	if user == nil || !user.HasNotionCredential() {
		return ErrNotConnected
	}

	body := execCtx.Content()
	if body == "" {
		body = "Hello from Orbit Workflow!"
	}

	body = truncate(body, maxBodyLength)

	payload := map[string]any{
		"parent": map[string]any{"database_id": h.DatabaseID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []any{
					map[string]any{"text": map[string]any{"content": h.Title}},
				},
			},
		},
		"children": []any{
			map[string]any{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]any{
					"rich_text": []any{
						map[string]any{"type": "text", "text": map[string]any{"content": body}},
					},
				},
			},
		},
	}

	if err := h.createPage(ctx, user.NotionAccessToken, payload); err != nil {
		return fmt.Errorf("notion page creation failed: %w", err)
	}

	execCtx.Success("", "Notion Page Created!")
	logger.InfoContext(ctx, "Notion write completed", "body_chars", len(body))

	return nil
}

func (h *Handler) createPage(ctx context.Context, token string, payload map[string]any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode page payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/pages", bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", apiVersion)

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

		return fmt.Errorf("notion API returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// truncate cuts s to at most limit bytes without splitting a multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}

	return s[:limit]
}
