package slack

import (
	"github.com/orbitflows/orbit/pkg/protocol"
)

// Factory creates Slack webhook handlers.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "slack"
}

func (*Factory) Name() string {
	return "Slack"
}

func (*Factory) Description() string {
	return "Posts the current content (or a static message) to a Slack incoming webhook."
}

func (f *Factory) Create(config map[string]any) (protocol.Handler, error) {
	return NewHandler(config)
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"webhookUrl": map[string]any{
				"type":        "string",
				"description": "The Slack incoming webhook URL to post to.",
			},
			"slackWebhook": map[string]any{
				"type":        "string",
				"description": "Legacy name for webhookUrl, kept for graphs saved by older editors.",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Static message. When empty the content from previous nodes is sent instead.",
			},
		},
		"anyOf": []any{
			map[string]any{"required": []string{"webhookUrl"}},
			map[string]any{"required": []string{"slackWebhook"}},
		},
	}
}
