package drive

import (
	"github.com/orbitflows/orbit/pkg/protocol"
)

// Factory creates Drive read handlers.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "google-drive"
}

func (*Factory) Name() string {
	return "Google Drive"
}

func (*Factory) Description() string {
	return "Reads a Google Drive file as plain text and passes it to the next node. Requires a connected Google account."
}

func (f *Factory) Create(config map[string]any) (protocol.Handler, error) {
	return NewHandler(config)
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fileId": map[string]any{
				"type":        "string",
				"description": "The Drive file ID to read. Google-native files are exported to plain text.",
			},
			"baseUrl": map[string]any{
				"type":        "string",
				"description": "Override for the Drive API base URL.",
				"default":     DefaultBaseURL,
			},
		},
		"required": []string{"fileId"},
	}
}
