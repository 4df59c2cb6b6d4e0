package agents

import (
	"sort"
	"sync"

	"studiodesk/internal/tools"
	"studiodesk/pkg/errors"
)

// Registry stores agent configs by their type for quick lookup.
type Registry struct {
	agents map[AgentType]AgentConfig
	mu     sync.RWMutex
}

// NewRegistry constructs an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[AgentType]AgentConfig)}
}

// NewDefaultRegistry holds DefaultAgentConfigs after checking their tools exist in toolRegistry.
func NewDefaultRegistry(toolRegistry *tools.Registry) (*Registry, error) {
	r := NewRegistry()
	for _, cfg := range DefaultAgentConfigs {
		if _, err := toolRegistry.Definitions(cfg.Tools...); err != nil {
			return nil, errors.Wrapf(err, "agent %s", cfg.Type)
		}
		r.Register(cfg)
	}
	return r, nil
}

// Register adds or replaces an agent entry.
func (r *Registry) Register(cfg AgentConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[cfg.Type] = cfg
}

// Get retrieves an agent by type.
func (r *Registry) Get(agentType AgentType) (AgentConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.agents[agentType]
	return cfg, ok
}

// List returns registered agent types in name order.
func (r *Registry) List() []AgentType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]AgentType, 0, len(r.agents))
	for t := range r.agents {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })

	return res
}
