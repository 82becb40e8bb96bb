package redis

import (
	"context"
	"sync"
	"time"

	"english-star-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Sessions stay in a local map so the in-process broadcast logic keeps
// working; Redis only marks session liveness for external observability.
type SessionRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(student), "1", r.ttl).Err()
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
	if _, ok := r.sessions[student]; !ok {
		return
	}
	delete(r.sessions, student)
	_ = r.client.Del(context.Background(), r.key(student)).Err()
}

func (r *SessionRegistry) key(student string) string {
	return "english_star:session:" + student
}
