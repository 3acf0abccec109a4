// Package aiagent provides the ai-agent node handler: run the user's
// instruction through a generative model, grounded on whatever content the
// previous nodes produced.
package aiagent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
)

const responsePreviewLength = 60

// Generator produces text for a prompt. The production implementation wraps
// the Gemini API; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Handler runs a prompt through the generator and writes the response to the
// content slot.
type Handler struct {
	Prompt string

	generator Generator
}

// NewHandler creates an AI agent handler from node configuration.
func NewHandler(config map[string]any, generator Generator) (*Handler, error) {
	prompt, _ := config["prompt"].(string)
	if prompt == "" {
		prompt = "Analyze this."
	}

	return &Handler{
		Prompt:    prompt,
		generator: generator,
	}, nil
}

// Execute assembles the grounded prompt and stores the model response in the
// content slot.
func (h *Handler) Execute(ctx context.Context, execCtx *execution.Context, _ *models.User, logger *slog.Logger) error {
	logger = logger.With("module", "aiagent_handler")
	logger.InfoContext(ctx, "Executing AI agent")

	execCtx.Info("", "🧠 AI Agent: Thinking...")

	response, err := h.generator.Generate(ctx, h.buildPrompt(execCtx))
	if err != nil {
		return fmt.Errorf("AI generation failed: %w", err)
	}

	preview := response
	if len(preview) > responsePreviewLength {
		preview = preview[:responsePreviewLength] + "..."
	}

	execCtx.Info("", "🤖 AI Response: %q", preview)
	execCtx.SetContent(response)

	logger.InfoContext(ctx, "AI agent completed", "response_chars", len(response))

	return nil
}

// buildPrompt grounds the instruction on the content slot when a previous
// node (scraper, drive read) filled it; otherwise the instruction runs alone.
func (h *Handler) buildPrompt(execCtx *execution.Context) string {
	if !execCtx.HasContent() {
		return h.Prompt
	}

	var builder strings.Builder
	builder.WriteString("CONTEXT DATA (From Website/File):\n")
	builder.WriteString(`"""` + execCtx.Content() + `"""` + "\n\n")
	builder.WriteString("USER INSTRUCTION:\n")
	builder.WriteString(h.Prompt + "\n\n")
	builder.WriteString("Task: Answer the user instruction strictly based on the context above.")

	return builder.String()
}
