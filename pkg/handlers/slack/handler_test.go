package slack_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/handlers/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func captureWebhook(t *testing.T, status int) (*httptest.Server, *[]string) {
	t.Helper()

	var texts []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		texts = append(texts, payload.Text)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, &texts
}

func TestHandler_Execute_StaticMessageWins(t *testing.T) {
	t.Parallel()

	server, texts := captureWebhook(t, http.StatusOK)

	handler, err := slack.NewHandler(map[string]any{
		"webhookUrl": server.URL,
		"message":    "Deploy finished",
	})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	execCtx.SetContent("upstream content")

	require.NoError(t, handler.Execute(context.Background(), execCtx, nil, testLogger()))

	require.Len(t, *texts, 1)
	assert.Equal(t, "🤖 *Orbit Bot:* Deploy finished", (*texts)[0])
	assert.Contains(t, execCtx.DisplayLines(), "✅ Slack Message Sent!")
}

func TestHandler_Execute_ContentSlotFallback(t *testing.T) {
	t.Parallel()

	server, texts := captureWebhook(t, http.StatusOK)

	handler, err := slack.NewHandler(map[string]any{"webhookUrl": server.URL})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	execCtx.SetContent("the summary")

	require.NoError(t, handler.Execute(context.Background(), execCtx, nil, testLogger()))

	require.Len(t, *texts, 1)
	assert.Equal(t, "🤖 *Orbit Bot:* the summary", (*texts)[0])
}

func TestHandler_Execute_DefaultMessage(t *testing.T) {
	t.Parallel()

	server, texts := captureWebhook(t, http.StatusOK)

	handler, err := slack.NewHandler(map[string]any{"webhookUrl": server.URL})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	require.NoError(t, handler.Execute(context.Background(), execCtx, nil, testLogger()))

	require.Len(t, *texts, 1)
	assert.Equal(t, "🤖 *Orbit Bot:* Hello from Orbit Workflow!", (*texts)[0])
}

func TestHandler_Execute_WebhookFailure(t *testing.T) {
	t.Parallel()

	server, _ := captureWebhook(t, http.StatusForbidden)

	handler, err := slack.NewHandler(map[string]any{"webhookUrl": server.URL})
	require.NoError(t, err)

	execCtx := execution.NewContext("wf-1")
	err = handler.Execute(context.Background(), execCtx, nil, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestNewHandler_LegacyWebhookKey(t *testing.T) {
	t.Parallel()

	handler, err := slack.NewHandler(map[string]any{"slackWebhook": "https://hooks.slack.com/services/x"})

	require.NoError(t, err)
	assert.Equal(t, "https://hooks.slack.com/services/x", handler.WebhookURL)
}

func TestNewHandler_RequiresWebhook(t *testing.T) {
	t.Parallel()

	_, err := slack.NewHandler(map[string]any{})

	require.Error(t, err)
	assert.ErrorIs(t, err, slack.ErrNoWebhook)
}
