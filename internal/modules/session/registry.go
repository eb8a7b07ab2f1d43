package session

import (
	"log"
	"sync"
	"time"

	"myitinerary/internal/types"
)

// Registry keeps the sessions of this process in memory. Nothing survives a restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[types.ID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[types.ID]*Session)}
}

func (r *Registry) Create(user User) *Session {
	if user.Username == "" && user.Email == "" {
		user = DefaultUser()
	}
	s := New(user)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id types.ID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close abandons and forgets the session.
func (r *Registry) Close(id types.ID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions with no call in flight that have been idle longer than maxIdle.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		log.Printf("[SESSION] swept %d idle sessions", len(expired))
	}
	return len(expired)
}
