package memory

import (
	"sync"

	"english-star-service/internal/app"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) GetOrCreate(student string) *app.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[student]; ok {
		return session
	}
	session := app.NewSession(student)
	r.sessions[student] = session
	return session
}

func (r *SessionRegistry) Get(student string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[student]
	return session, ok
}

func (r *SessionRegistry) Delete(student string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, student)
}
