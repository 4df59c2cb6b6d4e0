package tools

import (
	"studiodesk/internal/tools/dashboard"
	"studiodesk/internal/tools/support"
	"studiodesk/pkg/logger"
)

// RegisterAllTools registers all available tools in the registry
func RegisterAllTools(registry *Registry, deps Deps) error {
	if deps.Log == nil {
		deps.Log = logger.Get()
	}
	log := deps.Log.With("component", "tool_registration")

	// Tools use shared.NewToolBuilder with built-in middleware:
	// - WithTimeout(duration) - execution timeout enforcement
	// - WithRetry(attempts, backoff) - retry of read-only tools on transient errors
	// - WithStats() - Prometheus call and latency metrics

	for _, t := range support.Tools(deps) {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	log.Debug("Registered support tools")

	for _, t := range dashboard.Tools(deps) {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	log.Debug("Registered dashboard tools")

	log.Infof("Tool registration complete: %d tools available", len(registry.List()))
	return nil
}

// NewCatalog builds a registry holding the full catalogue
func NewCatalog(deps Deps) (*Registry, error) {
	registry := NewRegistry()
	if err := RegisterAllTools(registry, deps); err != nil {
		return nil, err
	}
	return registry, nil
}
