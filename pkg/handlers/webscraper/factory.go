package webscraper

import (
	"errors"

	"github.com/orbitflows/orbit/pkg/protocol"
)

// ErrNoURL indicates the node configuration carries no URL to fetch.
var ErrNoURL = errors.New("no URL provided")

// Factory creates web scraper handlers.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "web-scraper"
}

func (*Factory) Name() string {
	return "Web Scraper"
}

func (*Factory) Description() string {
	return "Fetches a web page, strips scripts and navigation, and passes the visible text to the next node."
}

func (f *Factory) Create(config map[string]any) (protocol.Handler, error) {
	return NewHandler(config)
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL of the page to scrape.",
				"examples":    []string{"https://example.com/pricing"},
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds.",
				"default":     15,
			},
		},
		"required": []string{"url"},
	}
}
