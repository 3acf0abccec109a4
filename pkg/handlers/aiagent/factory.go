package aiagent

import (
	"github.com/orbitflows/orbit/pkg/protocol"
)

// Factory creates AI agent handlers bound to one generator.
type Factory struct {
	generator Generator
}

func NewFactory(generator Generator) *Factory {
	return &Factory{generator: generator}
}

func (*Factory) ID() string {
	return "ai-agent"
}

func (*Factory) Name() string {
	return "AI Agent"
}

func (*Factory) Description() string {
	return "Runs an instruction through a generative model, using content from previous nodes as grounding context."
}

func (f *Factory) Create(config map[string]any) (protocol.Handler, error) {
	return NewHandler(config, f.generator)
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The instruction for the model. Content produced by earlier nodes is prepended as context.",
				"examples": []string{
					"Summarize this page in three bullet points.",
					"Extract every price mentioned and list them.",
				},
			},
		},
		"required": []string{"prompt"},
	}
}
