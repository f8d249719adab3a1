package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Registry maps player names to their live push channel and their current
// per-game authentication key. Entries exist only while a player is queued
// or playing; both are removed when their game finishes.
type Registry struct {
	mu       sync.RWMutex
	keys     map[string]string
	channels map[string]*Channel
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		keys:     make(map[string]string),
		channels: make(map[string]*Channel),
	}
}

// MintKey generates a fresh per-game key for name, replacing any previous
// one, and returns it.
func (r *Registry) MintKey(name string) string {
	key := uuid.NewString()
	r.mu.Lock()
	r.keys[name] = key
	r.mu.Unlock()
	return key
}

// MatchKey reports whether key is the current key registered for name.
func (r *Registry) MatchKey(name, key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	current, ok := r.keys[name]
	return ok && key != "" && current == key
}

// DropKey forgets the key registered for name.
func (r *Registry) DropKey(name string) {
	r.mu.Lock()
	delete(r.keys, name)
	r.mu.Unlock()
}

// Register attaches a push channel for name. A player owns exactly one
// outbound stream; an existing channel is closed and replaced.
func (r *Registry) Register(name string, ch *Channel) {
	r.mu.Lock()
	prev := r.channels[name]
	r.channels[name] = ch
	r.mu.Unlock()

	if prev != nil && prev != ch {
		prev.Close()
		log.Warn().Str("player", name).Msg("replaced existing push channel")
	}
	log.Debug().Str("player", name).Msg("push channel registered")
}

// Channel returns the push channel registered for name, if any.
func (r *Registry) Channel(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// Deregister detaches the push channel for name without closing it. The
// caller owns the close. Detaching an unknown name is a no-op.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	delete(r.channels, name)
	r.mu.Unlock()
	log.Debug().Str("player", name).Msg("push channel deregistered")
}
