// Package webscraper provides the web-scraper node handler: fetch a page,
// strip the junk, and leave the visible text in the run context.
package webscraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
	"golang.org/x/net/html"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; OrbitBot/1.0)"

	// maxContentLength bounds the extracted text so downstream prompts and
	// page bodies stay within model and API limits.
	maxContentLength = 3000
)

// Tags whose subtrees carry no readable page content.
var excludedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"iframe": true,
}

// Handler fetches a URL and writes the page's visible text to the content slot.
type Handler struct {
	URL     string
	Timeout time.Duration

	client *http.Client
}

// NewHandler creates a web scraper handler from node configuration.
func NewHandler(config map[string]any) (*Handler, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("web-scraper node: %w", ErrNoURL)
	}

	timeout := defaultTimeout
	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	return &Handler{
		URL:     url,
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Execute fetches the page and stores its extracted text in the content slot.
func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, _ *models.User, logger *slog.Logger) error {
	logger = logger.With("module", "webscraper_handler", "url", h.URL)
	logger.InfoContext(ctx, "Executing web scraper")

	execCtx.Info("", "🌐 Scraper: Visiting %s...", h.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return fmt.Errorf("scraper failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("scraper request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("scraper request failed: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("scraper failed to parse page: %w", err)
	}

	title, text := extract(doc)
	text = truncate(text, maxContentLength)

	execCtx.Success("", "Scraper: Found page %q", title)
	execCtx.Info("", "📄 Extracted %d characters.", len(text))
	execCtx.SetContent(text)

	logger.InfoContext(ctx, "Web scraper completed", "title", title, "chars", len(text))

	return nil
}

// extract walks the parsed document collecting the page title and the text
// outside excluded subtrees, with runs of whitespace collapsed.
func extract(doc *html.Node) (title, text string) {
	var builder strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" {
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}

				return
			}

			if excludedTags[n.Data] {
				return
			}
		}

		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			builder.WriteString(" ")
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return title, strings.Join(strings.Fields(builder.String()), " ")
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
