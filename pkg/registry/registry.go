// Package registry maps node type tags to capability handler factories.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/orbitflows/orbit/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// Registry resolves a node's string type tag to the factory that builds its
// handler. Adding a node type means registering one more factory; the engine
// itself has no per-type branches.
type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.HandlerFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.HandlerFactory),
	}
}

// Register adds a handler factory under its own ID.
func (r *Registry) Register(factory protocol.HandlerFactory) {
	r.factories[factory.ID()] = factory
	r.logger.Debug("Registered handler factory", "node_type", factory.ID(), "name", factory.Name())
}

// RegisterAlias exposes an already registered factory under a second node
// type tag. The editor historically saved some types under older names
// ("browser", "send-email"); graphs carrying them must keep executing.
func (r *Registry) RegisterAlias(alias, target string) error {
	factory, ok := r.factories[target]
	if !ok {
		return fmt.Errorf("handler type '%s' not registered", target)
	}

	r.factories[alias] = factory
	r.logger.Debug("Registered handler alias", "alias", alias, "node_type", target)

	return nil
}

// IsRegistered reports whether a node type has a handler.
func (r *Registry) IsRegistered(nodeType string) bool {
	_, ok := r.factories[nodeType]

	return ok
}

// CreateHandler validates the node configuration against the factory schema
// and builds the handler.
func (r *Registry) CreateHandler(nodeType string, config map[string]any) (protocol.Handler, error) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("handler type '%s' not registered", nodeType)
	}

	if err := r.validateConfig(factory, config); err != nil {
		return nil, err
	}

	return factory.Create(config)
}

// Factories returns the registered factories keyed by node type, including
// aliases. Used by the API to describe available node types.
func (r *Registry) Factories() map[string]protocol.HandlerFactory {
	out := make(map[string]protocol.HandlerFactory, len(r.factories))
	for id, factory := range r.factories {
		out[id] = factory
	}

	return out
}

func (r *Registry) validateConfig(factory protocol.HandlerFactory, config map[string]any) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate config for '%s': %w", factory.ID(), err)
	}

	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("invalid config for '%s': %s", factory.ID(), errs[0].String())
		}

		return fmt.Errorf("invalid config for '%s'", factory.ID())
	}

	return nil
}
