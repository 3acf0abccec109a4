package gmail

import (
	"github.com/orbitflows/orbit/pkg/protocol"
)

// Factory creates Gmail send handlers.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "email"
}

func (*Factory) Name() string {
	return "Email"
}

func (*Factory) Description() string {
	return "Sends the current content as an email through the Gmail API. Requires a connected Google account."
}

func (f *Factory) Create(config map[string]any) (protocol.Handler, error) {
	return NewHandler(config)
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient email address.",
			},
			"emailTo": map[string]any{
				"type":        "string",
				"description": "Legacy name for the recipient, kept for graphs saved by older editors.",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Email subject line.",
				"default":     defaultSubject,
			},
			"baseUrl": map[string]any{
				"type":        "string",
				"description": "Override for the Gmail API base URL.",
				"default":     DefaultBaseURL,
			},
		},
		"anyOf": []any{
			map[string]any{"required": []string{"to"}},
			map[string]any{"required": []string{"emailTo"}},
		},
	}
}
