package memory

import (
	"context"
	"sync"

	"english-star-service/internal/domain"
)

// Store keeps the student profile and leaderboard in process memory. Reads
// hand back copies so callers never share mutable state with the store.
type Store struct {
	mu      sync.RWMutex
	user    *domain.User
	results []domain.QuizResult
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) GetUser(_ context.Context) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false, nil
	}
	return *s.user, true, nil
}

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *Store) GetLeaderboard(_ context.Context) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.QuizResult, len(s.results))
	copy(results, s.results)
	return results, nil
}

// SaveResult appends and keeps the whole collection ordered by score
// descending, ties in insertion order.
func (s *Store) SaveResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	domain.SortResults(s.results)
	return nil
}
