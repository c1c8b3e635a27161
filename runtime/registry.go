// Package runtime handles live-connection tracking and event delivery.
// It orchestrates propagation without containing domain rules.
package runtime

import (
	"sync"

	"tutor-chat/contract"
)

// Registry is the process-wide map from user identity to their active
// connection sink. It is explicitly owned state: constructed empty,
// injected where needed, cleared on shutdown. At most one sink per user
// is tracked; registering again replaces the previous handle, which is
// how a reconnect displaces a stale connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]contract.EventSink)}
}

// Register records the user's live connection. Last write wins.
func (r *Registry) Register(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = sink
}

// Unregister forgets the user's connection, if any.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// UnregisterSink forgets the user's connection only if it is still the
// given handle. A stale connection tearing down after a reconnect finds
// someone else's sink registered and leaves it alone.
func (r *Registry) UnregisterSink(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[userID]; ok && current == sink {
		delete(r.sessions, userID)
	}
}

// Lookup resolves the user's current sink. Absence is a normal condition.
func (r *Registry) Lookup(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[userID]
	return sink, ok
}

// Connected returns how many users currently hold a live connection.
func (r *Registry) Connected() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Clear drops every tracked connection. Used on shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]contract.EventSink)
}
