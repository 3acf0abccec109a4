package cmd

import (
	"log/slog"

	"github.com/orbitflows/orbit/pkg/eventbus"
)

// NewEventBus creates the run lifecycle event bus. Only the in-process
// gochannel provider exists today; the provider switch stays so a brokered
// bus can be added without touching the entrypoints.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "", "gochannel":
		return eventbus.NewGoChannelEventBus()
	default:
		logger.Warn("Unknown event bus provider, using gochannel", "provider", provider)

		return eventbus.NewGoChannelEventBus()
	}
}
