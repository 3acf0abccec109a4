package notion

import (
	"github.com/orbitflows/orbit/pkg/protocol"
)

// Factory creates Notion write handlers.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "notion"
}

func (*Factory) Name() string {
	return "Notion"
}

func (*Factory) Description() string {
	return "Creates a page in a Notion database with the current content as its body. Requires a connected Notion workspace."
}

func (f *Factory) Create(config map[string]any) (protocol.Handler, error) {
	return NewHandler(config)
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"databaseId": map[string]any{
				"type":        "string",
				"description": "The Notion database to create the page in.",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Title of the created page.",
				"default":     "Orbit Workflow Result",
			},
			"baseUrl": map[string]any{
				"type":        "string",
				"description": "Override for the Notion API base URL.",
				"default":     DefaultBaseURL,
			},
		},
		"required": []string{"databaseId"},
	}
}
