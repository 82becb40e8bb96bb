package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"english-star-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	userRecord        = "english_star:user"
	leaderboardRecord = "english_star:leaderboard"
)

// Store persists the student profile and leaderboard as JSON documents in a
// key-value records table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetUser(ctx context.Context) (domain.User, bool, error) {
	raw, ok, err := s.getRecord(ctx, userRecord)
	if err != nil || !ok {
		return domain.User{}, false, err
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
	return s.putRecord(ctx, userRecord, raw)
}

func (s *Store) GetLeaderboard(ctx context.Context) ([]domain.QuizResult, error) {
	raw, ok, err := s.getRecord(ctx, leaderboardRecord)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.QuizResult{}, nil
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
	return s.putRecord(ctx, leaderboardRecord, raw)
}

func (s *Store) getRecord(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM records WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load record %s: %w", key, err)
	}
	return raw, true, nil
}

func (s *Store) putRecord(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (key, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (key) DO UPDATE SET data=EXCLUDED.data`, key, data)
	if err != nil {
		return fmt.Errorf("store record %s: %w", key, err)
	}
	return nil
}
