package llm

import (
	"context"
	"sync"

	"github.com/ragbench/ragbench/internal/models"
)

// Probe is the outcome of a connection check against an LLM endpoint.
type Probe struct {
	Model     string `json:"model"`
	LatencyMs int64  `json:"latency_ms"`
}

// Provider verifies connectivity of stored LLM connection profiles.
// Providers never take part in evaluation scoring; the RAG pipeline is an
// external collaborator.
type Provider interface {
	// Name returns the provider key configs reference (azure, google, ...)
	Name() string

	// Validate checks that a config carries the fields this provider needs
	Validate(cfg *models.LLMConfig) error

	// Verify issues one minimal completion against the configured endpoint
	Verify(ctx context.Context, cfg *models.LLMConfig) (*Probe, error)
}

// Registry holds the registered providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under its name
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider registered under name
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
