package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"english-star-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Key layout mirrors the browser original's two-record namespace: one JSON
// user profile, one JSON list of quiz results.
const (
	userKey        = "english_star:user"
	leaderboardKey = "english_star:leaderboard"
)

// Store persists the student profile and leaderboard as two JSON records in
// Redis. SaveResult is read-then-write without a transaction; concurrent
// writers are out of scope for this single-student model.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) GetUser(ctx context.Context) (domain.User, bool, error) {
	raw, err := s.client.Get(ctx, userKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, false, fmt.Errorf("unmarshal user: %w", err)
	}
	return user, true, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.client.Set(ctx, userKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

func (s *Store) GetLeaderboard(ctx context.Context) ([]domain.QuizResult, error) {
	raw, err := s.client.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.QuizResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	var results []domain.QuizResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return results, nil
}

func (s *Store) SaveResult(ctx context.Context, result domain.QuizResult) error {
	results, err := s.GetLeaderboard(ctx)
	if err != nil {
		return err
	}
	results = append(results, result)
	domain.SortResults(results)

	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}
	if err := s.client.Set(ctx, leaderboardKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("set leaderboard: %w", err)
	}
	return nil
}
