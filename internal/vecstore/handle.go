package vecstore

import "sync"

// Handle publishes store generations to concurrent readers. A rebuild
// constructs its new Store off to the side and swaps it in; the lock is held
// only for the pointer exchange, never for a scan, so queries against the
// previous generation keep serving throughout a build.
type Handle struct {
	mu    sync.RWMutex
	store *Store
}

// NewHandle creates a handle, optionally seeded with an initial generation.
func NewHandle(initial *Store) *Handle {
	return &Handle{store: initial}
}

// Current returns the live generation, or nil when no index has been built
// or loaded yet.
func (h *Handle) Current() *Store {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store
}

// Swap atomically publishes a new generation and returns the previous one.
func (h *Handle) Swap(next *Store) *Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.store
	h.store = next
	return prev
}
