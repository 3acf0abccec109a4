// Package protocol defines the contracts between the traversal engine and the
// capability handlers it dispatches to.
package protocol

import (
	"context"
	"log/slog"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
)

// Handler performs one node's external side effect. Implementations read and
// write the run context's content slot and append log entries describing what
// happened. A returned error is recorded by the engine as a failure log line
// for the step; it never aborts the traversal. Handlers must not panic past
// their own boundary and must leave the content slot untouched on failure.
type Handler interface {
	Execute(ctx context.Context, execCtx *execution.Context, user *models.User, logger *slog.Logger) error
}

// HandlerFactory creates handler instances from node configuration and
// describes the node type for registries and editors.
type HandlerFactory interface {
	// Create builds a handler from the node's data map. Missing or invalid
	// required configuration fails here; the engine records that as a step
	// failure in the run log.
	Create(config map[string]any) (Handler, error)

	// ID returns the node type tag this factory serves.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a short description of what the node does.
	Description() string

	// Schema returns the JSON Schema for the node's data map.
	Schema() map[string]any
}
