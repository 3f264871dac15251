package embeddings

import (
	"fmt"
	"sync"
)

// Registry holds embedding providers keyed by tenant, with a default
// for tenants without an override.
//
// It replaces the pattern of a process-global cached provider: the
// registry is constructed once, injected into the ingestion and query
// components, and safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	fallback Provider
	byOrg    map[int64]Provider
}

// NewRegistry creates a registry with the given default provider.
func NewRegistry(fallback Provider) (*Registry, error) {
	if fallback == nil {
		return nil, fmt.Errorf("%w: default provider required", ErrInvalidConfig)
	}
	return &Registry{
		fallback: fallback,
		byOrg:    make(map[int64]Provider),
	}, nil
}

// Register binds a provider to one tenant, overriding the default.
// The override must share the default's dense dimension: the index
// schema is fixed per deployment.
func (r *Registry) Register(orgID int64, p Provider) error {
	if p == nil {
		return fmt.Errorf("%w: provider cannot be nil", ErrInvalidConfig)
	}
	if p.Dimension() != r.fallback.Dimension() {
		return fmt.Errorf("%w: provider %s dimension %d does not match deployment dimension %d",
			ErrInvalidConfig, p.Name(), p.Dimension(), r.fallback.Dimension())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOrg[orgID] = p
	return nil
}

// ProviderFor returns the provider for a tenant.
func (r *Registry) ProviderFor(orgID int64) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byOrg[orgID]; ok {
		return p
	}
	return r.fallback
}

// Dimension returns the deployment's dense embedding dimension.
func (r *Registry) Dimension() int {
	return r.fallback.Dimension()
}

// Close closes every registered provider.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	closed := map[Provider]bool{}
	for _, p := range r.byOrg {
		if !closed[p] {
			closed[p] = true
			if err := p.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if !closed[r.fallback] {
		if err := r.fallback.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
