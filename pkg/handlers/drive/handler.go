// Package drive provides the google-drive node handler: read one file's
// content through the Drive API using the owner's OAuth credential.
package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
)

const (
	// DefaultBaseURL is the Drive v3 API root.
	DefaultBaseURL = "https://www.googleapis.com/drive/v3"

	defaultTimeout = 30 * time.Second

	// maxContentLength bounds the file text carried in the content slot,
	// matching the context budget used by the scraper.
	maxContentLength = 3000
)

var (
	// ErrNoFileID indicates the node configuration names no file.
	ErrNoFileID = errors.New("no fileId provided")

	// ErrNotConnected indicates the acting user holds no Google credential.
	ErrNotConnected = errors.New("google account not connected")

	// ErrCredentialRejected indicates the stored token was refused by the API.
	ErrCredentialRejected = errors.New("google credential expired or revoked")
)

// googleNativePrefix marks Docs/Sheets/Slides files, which cannot be
// downloaded raw and must be exported to plain text instead.
const googleNativePrefix = "application/vnd.google-apps"

// Handler reads a Drive file and writes its text to the content slot.
type Handler struct {
	FileID  string
	BaseURL string

	client *http.Client
}

// NewHandler creates a Drive read handler from node configuration.
func NewHandler(config map[string]any) (*Handler, error) {
	fileID, _ := config["fileId"].(string)
	if fileID == "" {
		return nil, fmt.Errorf("google-drive node: %w", ErrNoFileID)
	}

	baseURL, _ := config["baseUrl"].(string)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Handler{
		FileID:  fileID,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

type fileMetadata struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// Execute fetches the file's metadata, then its content, and stores the text
// in the content slot.
func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, user *models.User, logger *slog.Logger) error {
	logger = logger.With("module", "drive_handler", "file_id", h.FileID)
	logger.InfoContext(ctx, "Executing Drive read")

	execCtx.Info("", "📂 Drive: Fetching file %s...", h.FileID)

	if user == nil || !user.HasGoogleCredential() {
		return ErrNotConnected
	}

	meta, err := h.fetchMetadata(ctx, user.GoogleAccessToken)
	if err != nil {
		return fmt.Errorf("drive metadata fetch failed: %w", err)
	}

	content, err := h.fetchContent(ctx, user.GoogleAccessToken, meta.MimeType)
	if err != nil {
		return fmt.Errorf("drive content fetch failed: %w", err)
	}

	content = truncate(content, maxContentLength)

	execCtx.Success("", "File Read: %q (%d characters)", meta.Name, len(content))
	execCtx.SetContent(content)

	logger.InfoContext(ctx, "Drive read completed", "file_name", meta.Name, "chars", len(content))

	return nil
}

func (h *Handler) fetchMetadata(ctx context.Context, token string) (*fileMetadata, error) {
	endpoint := fmt.Sprintf("%s/files/%s?fields=name%%2CmimeType", h.BaseURL, url.PathEscape(h.FileID))

	body, err := h.get(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	var meta fileMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode file metadata: %w", err)
	}

	return &meta, nil
}

func (h *Handler) fetchContent(ctx context.Context, token, mimeType string) (string, error) {
	var endpoint string
	if strings.HasPrefix(mimeType, googleNativePrefix) {
		endpoint = fmt.Sprintf("%s/files/%s/export?mimeType=text%%2Fplain", h.BaseURL, url.PathEscape(h.FileID))
	} else {
		endpoint = fmt.Sprintf("%s/files/%s?alt=media", h.BaseURL, url.PathEscape(h.FileID))
	}

	body, err := h.get(ctx, endpoint, token)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (h *Handler) get(ctx context.Context, endpoint, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrCredentialRejected
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("drive API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
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
