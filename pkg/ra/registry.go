package ra

import (
	"context"
	"net/url"
	"sync"
)

// Registry dispatches Open calls to the Plugin registered for a URL's
// scheme.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds p, keyed by p.Scheme(). A later call for the same
// scheme replaces the earlier one.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Scheme()] = p
}

// Open parses rawURL's scheme and hands the Open call to whichever
// Plugin is registered for it.
func (r *Registry) Open(ctx context.Context, rawURL string) (Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrUnknownScheme("", rawURL)
	}

	r.mu.RLock()
	p, ok := r.plugins[u.Scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownScheme(u.Scheme, rawURL)
	}
	return p.Open(ctx, rawURL)
}
