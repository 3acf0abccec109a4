package notion_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/handlers/notion"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func connectedUser() *models.User {
	return &models.User{
		ID:                "user-1",
		Email:             "user@example.com",
		NotionAccessToken: "notion-token",
	}
}

type capturedPage struct {
	Parent struct {
		DatabaseID string `json:"database_id"`
	} `json:"parent"`
	Properties struct {
		Name struct {
			Title []struct {
				Text struct {
					Content string `json:"content"`
				} `json:"text"`
			} `json:"title"`
		} `json:"Name"`
	} `json:"properties"`
	Children []struct {
		Type      string `json:"type"`
		Paragraph struct {
			RichText []struct {
				Text struct {
					Content string `json:"content"`
				} `json:"text"`
			} `json:"rich_text"`
		} `json:"paragraph"`
	} `json:"children"`
}

func notionServer(t *testing.T, status int) (*httptest.Server, *[]capturedPage) {
	t.Helper()

	var pages []capturedPage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pages", r.URL.Path)
		assert.Equal(t, "Bearer notion-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))

		var page capturedPage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&page))
		pages = append(pages, page)

		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, &pages
}

func TestHandler_Execute_CreatesPageFromContent(t *testing.T) {
	t.Parallel()

	server, pages := notionServer(t, http.StatusOK)

	handler, err := notion.NewHandler(map[string]any{
		"databaseId": "db-1",
		"title":      "Daily Digest",
		"baseUrl":    server.URL,
	})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	execCtx.SetContent("Three findings from today.")

	require.NoError(t, handler.Execute(context.Background(), execCtx, connectedUser(), testLogger()))

	require.Len(t, *pages, 1)
	page := (*pages)[0]
	assert.Equal(t, "db-1", page.Parent.DatabaseID)
	require.Len(t, page.Properties.Name.Title, 1)
	assert.Equal(t, "Daily Digest", page.Properties.Name.Title[0].Text.Content)
	require.Len(t, page.Children, 1)
	assert.Equal(t, "paragraph", page.Children[0].Type)
	require.Len(t, page.Children[0].Paragraph.RichText, 1)
	assert.Equal(t, "Three findings from today.", page.Children[0].Paragraph.RichText[0].Text.Content)

	assert.Contains(t, execCtx.DisplayLines(), "✅ Notion Page Created!")
}

func TestHandler_Execute_TruncatesBody(t *testing.T) {
	t.Parallel()

	server, pages := notionServer(t, http.StatusOK)

	handler, err := notion.NewHandler(map[string]any{
		"databaseId": "db-1",
		"baseUrl":    server.URL,
	})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	execCtx.SetContent(strings.Repeat("b", 3000))

	require.NoError(t, handler.Execute(context.Background(), execCtx, connectedUser(), testLogger()))

	require.Len(t, *pages, 1)
	assert.Len(t, (*pages)[0].Children[0].Paragraph.RichText[0].Text.Content, 2000)
}

func TestHandler_Execute_TruncatesBodyOnRuneBoundary(t *testing.T) {
	t.Parallel()

	server, pages := notionServer(t, http.StatusOK)

	handler, err := notion.NewHandler(map[string]any{
		"databaseId": "db-1",
		"baseUrl":    server.URL,
	})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	// One leading ASCII byte pushes the 2000-byte cut into the middle of a
	// three-byte rune.
	execCtx.SetContent("a" + strings.Repeat("日", 1000))

	require.NoError(t, handler.Execute(context.Background(), execCtx, connectedUser(), testLogger()))

	require.Len(t, *pages, 1)
	body := (*pages)[0].Children[0].Paragraph.RichText[0].Text.Content
	assert.True(t, utf8.ValidString(body))
	assert.Len(t, body, 1999)
}

func TestHandler_Execute_DefaultBody(t *testing.T) {
	t.Parallel()

	server, pages := notionServer(t, http.StatusOK)

	handler, err := notion.NewHandler(map[string]any{
		"databaseId": "db-1",
		"baseUrl":    server.URL,
	})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	require.NoError(t, handler.Execute(context.Background(), execCtx, connectedUser(), testLogger()))

	require.Len(t, *pages, 1)
	assert.Equal(t, "Hello from Orbit Workflow!", (*pages)[0].Children[0].Paragraph.RichText[0].Text.Content)
}

func TestHandler_Execute_NotConnected(t *testing.T) {
	t.Parallel()

	handler, err := notion.NewHandler(map[string]any{"databaseId": "db-1"})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	err = handler.Execute(context.Background(), execCtx, &models.User{ID: "user-1"}, testLogger())

	assert.ErrorIs(t, err, notion.ErrNotConnected)
}

func TestHandler_Execute_CredentialRejected(t *testing.T) {
	t.Parallel()

	server, _ := notionServer(t, http.StatusUnauthorized)

	handler, err := notion.NewHandler(map[string]any{
		"databaseId": "db-1",
		"baseUrl":    server.URL,
	})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	err = handler.Execute(context.Background(), execCtx, connectedUser(), testLogger())

	assert.ErrorIs(t, err, notion.ErrCredentialRejected)
}

func TestNewHandler_RequiresDatabaseID(t *testing.T) {
	t.Parallel()

	_, err := notion.NewHandler(map[string]any{})

	require.Error(t, err)
	assert.ErrorIs(t, err, notion.ErrNoDatabaseID)
}
