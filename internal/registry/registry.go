package registry

import (
	"errors"
	"sync"
)

// ErrDuplicateKey is returned when a key is already registered by a live
// client.
var ErrDuplicateKey = errors.New("api key already registered")

// KeyRegistry tracks API keys held by live clients so that no two clients in
// a process share one. It is an explicit, injectable object rather than
// package-level state, so parallel tests can each own their own registry.
type KeyRegistry struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewKeyRegistry returns an empty registry.
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{
		keys: make(map[string]struct{}),
	}
}

// Register claims the key. Fails with ErrDuplicateKey when another live
// client already holds it.
func (r *KeyRegistry) Register(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[key]; exists {
		return ErrDuplicateKey
	}
	r.keys[key] = struct{}{}
	return nil
}

// Release frees the key for reuse. Releasing an unregistered key is a no-op.
func (r *KeyRegistry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, key)
}

// Held reports whether the key is currently registered.
func (r *KeyRegistry) Held(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.keys[key]
	return ok
}
