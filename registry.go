package headinject

import "sync"

// Registry caches snippets by configuration document so hosts that reload the
// same settings do not render them again. Failed documents are not cached.
// A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	snippets map[registryKey]*Snippet
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{snippets: make(map[registryKey]*Snippet)}
}

// Snippet returns the cached snippet for data or builds a new one.
func (r *Registry) Snippet(c Codec, data []byte) (*Snippet, error) {
	key := documentKey(c.ContentType(), data)

	// Fast path: read-lock cache check
	r.mu.RLock()
	if cached, ok := r.snippets[key]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	// Slow path: build and cache with write-lock
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check pattern
	if cached, ok := r.snippets[key]; ok {
		return cached, nil
	}

	snippet, err := NewSnippet(c, data)
	if err != nil {
		return nil, err
	}

	r.snippets[key] = snippet
	return snippet, nil
}

// Len returns the number of cached snippets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snippets)
}

// Reset clears the cache.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snippets = make(map[registryKey]*Snippet)
}

var defaultRegistry = NewRegistry()

// Use returns a snippet for data from the package-level registry.
func Use(c Codec, data []byte) (*Snippet, error) {
	return defaultRegistry.Snippet(c, data)
}

// Reset clears the package-level registry.
// This is primarily useful for test isolation.
func Reset() {
	defaultRegistry.Reset()
}
