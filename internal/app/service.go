package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"english-star-service/internal/domain"
	"go.uber.org/zap"
)

// User-visible reasons for terminal session errors.
const (
	ReasonAlreadyTaken = "Hôm nay bạn đã làm bài kiểm tra rồi! Hãy quay lại vào ngày mai nhé."
	ReasonUnavailable  = "Không thể tải bài kiểm tra. Hãy thử lại sau!"
)

// Fallbacks for degraded adapters and the default daily quiz topic.
const (
	DefaultHint     = "Hãy cố gắng lên nhé!"
	ChatApology     = "Ôi, thầy gặp chút trục trặc. Em hỏi lại nhé!"
	DefaultTopic    = "tổng hợp tiếng anh tiểu học"
	DefaultGreeting = "Chào em! Thầy là trợ lý AI. Em có câu hỏi nào về tiếng Anh không?"
)

// Store persists the single student profile and the leaderboard. Reads hand
// back fresh copies; writes are read-then-write without a transaction
// boundary, which is acceptable in this single-student model.
type Store interface {
	GetUser(ctx context.Context) (domain.User, bool, error)
	SaveUser(ctx context.Context, user domain.User) error
	GetLeaderboard(ctx context.Context) ([]domain.QuizResult, error)
	SaveResult(ctx context.Context, result domain.QuizResult) error
}

// SessionRegistry tracks the active quiz session per student.
type SessionRegistry interface {
	GetOrCreate(student string) *Session
	Get(student string) (*Session, bool)
	Delete(student string)
}

// QuizGenerator produces the raw daily quiz for a topic. May fail; the core
// treats it as an opaque source of question content.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, topic string) ([]domain.QuizQuestion, error)
}

// HintProvider produces a short practice tip. Failures are non-fatal.
type HintProvider interface {
	QuickHint(ctx context.Context, skill domain.Skill, topic string) (string, error)
}

// ChatProvider answers the tutor conversation. Failures are non-fatal.
type ChatProvider interface {
	ChatResponse(ctx context.Context, history []domain.ChatMessage) (string, error)
}

// SpeechProvider synthesizes audio for a text. Playback is a UI concern.
type SpeechProvider interface {
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// Adapters bundles the external AI collaborators. Any of Hints, Chat, or
// Speech may be nil; the service then serves the static fallback.
type Adapters struct {
	Generator QuizGenerator
	Hints     HintProvider
	Chat      ChatProvider
	Speech    SpeechProvider
}

// CompanionService contains the learning-companion use cases: registration,
// the daily quiz lifecycle, the leaderboard, and the hint/chat/speech flows.
type CompanionService struct {
	logger   *zap.SugaredLogger
	store    Store
	sessions SessionRegistry
	adapters Adapters
	topic    string
	now      func() time.Time
}

func NewCompanionService(logger *zap.SugaredLogger, store Store, sessions SessionRegistry, adapters Adapters, topic string) *CompanionService {
	if topic == "" {
		topic = DefaultTopic
	}
	return &CompanionService{
		logger:   logger,
		store:    store,
		sessions: sessions,
		adapters: adapters,
		topic:    topic,
		now:      time.Now,
	}
}

// WithClock overrides the wall clock for deterministic tests.
func (s *CompanionService) WithClock(now func() time.Time) *CompanionService {
	s.now = now
	return s
}

// Register creates the student profile. The name is trimmed and must be
// non-empty; the new profile has never taken a quiz.
func (s *CompanionService) Register(ctx context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, domain.ErrEmptyName
	}
	user := domain.User{Name: name}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	s.logger.Infow("student registered", "name", name)
	return user, nil
}

// CurrentUser returns the registered profile, if any.
func (s *CompanionService) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	return s.store.GetUser(ctx)
}

// StartQuiz authorizes and starts a new quiz session for the registered
// student, replacing any prior session. When the gate denies, the session
// lands in a terminal Error without the generator ever being contacted and
// domain.ErrAlreadyTakenToday is returned alongside it. Otherwise the
// generator request runs asynchronously; its result is discarded if the
// student exits before it resolves.
func (s *CompanionService) StartQuiz(ctx context.Context) (*Session, error) {
	user, ok, err := s.store.GetUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	s.sessions.Delete(user.Name)
	session := s.sessions.GetOrCreate(user.Name)

	if !CanTakeQuiz(user, s.now()) {
		session.deny(ReasonAlreadyTaken)
		return session, domain.ErrAlreadyTakenToday
	}

	go session.begin(ctx, s.adapters.Generator, s.topic)
	return session, nil
}

// Session returns the active session for a student.
func (s *CompanionService) Session(student string) (*Session, bool) {
	return s.sessions.Get(student)
}

// SelectOption records an answer on the student's active session.
func (s *CompanionService) SelectOption(student string, optionIndex int) (Snapshot, error) {
	session, ok := s.sessions.Get(student)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.SelectOption(optionIndex)
}

// Advance steps the student's session forward. On the completing call it
// persists the QuizResult and stamps the profile's LastQuizDate, exactly once.
func (s *CompanionService) Advance(ctx context.Context, student string) (Snapshot, error) {
	session, ok := s.sessions.Get(student)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	snap, completed, err := session.Advance()
	if err != nil || !completed {
		return snap, err
	}

	now := s.now()
	result := domain.QuizResult{
		StudentName: student,
		Score:       snap.Review.Score,
		Date:        domain.ResultDate(now),
	}
	if err := s.store.SaveResult(ctx, result); err != nil {
		return snap, fmt.Errorf("save result: %w", err)
	}

	user, ok, err := s.store.GetUser(ctx)
	if err != nil {
		return snap, fmt.Errorf("load user: %w", err)
	}
	if ok {
		user.LastQuizDate = domain.QuizDate(now)
		if err := s.store.SaveUser(ctx, user); err != nil {
			return snap, fmt.Errorf("save user: %w", err)
		}
	}
	s.logger.Infow("quiz completed", "student", student, "score", snap.Review.Score)
	return snap, nil
}

// ExitQuiz abandons the student's session without recording a result.
func (s *CompanionService) ExitQuiz(student string) {
	session, ok := s.sessions.Get(student)
	if !ok {
		return
	}
	session.Exit()
	s.sessions.Delete(student)
}

// Leaderboard returns all recorded results, ordered by score descending as
// written by the store.
func (s *CompanionService) Leaderboard(ctx context.Context) ([]domain.QuizResult, error) {
	return s.store.GetLeaderboard(ctx)
}

// Hint returns a short practice tip, falling back to a fixed default when the
// provider is missing, fails, or returns nothing.
func (s *CompanionService) Hint(ctx context.Context, skill domain.Skill, topic string) string {
	if s.adapters.Hints == nil {
		return DefaultHint
	}
	hint, err := s.adapters.Hints.QuickHint(ctx, skill, topic)
	if err != nil {
		s.logger.Warnw("hint generation failed, using default", "skill", skill, "error", err)
		return DefaultHint
	}
	if hint == "" {
		return DefaultHint
	}
	return hint
}

// Chat answers the tutor conversation, falling back to a generic apology when
// the provider is missing or fails.
func (s *CompanionService) Chat(ctx context.Context, history []domain.ChatMessage) string {
	if s.adapters.Chat == nil {
		return ChatApology
	}
	reply, err := s.adapters.Chat.ChatResponse(ctx, history)
	if err != nil {
		s.logger.Warnw("chat response failed, using apology", "error", err)
		return ChatApology
	}
	if reply == "" {
		return ChatApology
	}
	return reply
}

// Speech synthesizes audio for a text. Errors are degraded, not session-fatal;
// the caller decides how to surface them.
func (s *CompanionService) Speech(ctx context.Context, text string) ([]byte, error) {
	if s.adapters.Speech == nil {
		return nil, fmt.Errorf("speech synthesis not configured")
	}
	audio, err := s.adapters.Speech.GenerateSpeech(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate speech: %w", err)
	}
	return audio, nil
}
