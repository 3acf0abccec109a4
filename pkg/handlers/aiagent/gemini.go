package aiagent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// DefaultModel is the model used when the node does not name one.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse indicates the model returned no text candidates.
var ErrEmptyResponse = errors.New("model returned an empty response")

// GeminiGenerator generates text through the Google Gemini API. The client is
// created lazily on first use so handler construction never touches the
// network.
type GeminiGenerator struct {
	apiKey string
	model  string

	mutex  sync.Mutex
	client *genai.Client
}

func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	if model == "" {
		model = DefaultModel
	}

	return &GeminiGenerator{
		apiKey: apiKey,
		model:  model,
	}
}

func (g *GeminiGenerator) initClient(ctx context.Context) (*genai.Client, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	g.client = client

	return g.client, nil
}

// Generate runs the prompt through the configured model and returns its text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.initClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("error generating content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
