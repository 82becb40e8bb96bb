package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"english-star-service/internal/domain"
)

// SessionState is the explicit lifecycle state of one quiz attempt.
type SessionState int

const (
	StateLoading SessionState = iota
	StateInProgress
	StateCompleted
	StateError
	StateExited
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "inProgress"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	case StateExited:
		return "exited"
	}
	return "unknown"
}

func (s SessionState) terminal() bool {
	return s == StateCompleted || s == StateError || s == StateExited
}

// MaxQuestions caps how many generated questions make it into a session.
const MaxQuestions = 20

// Review packages a completed quiz for the review view: the shuffled
// questions, the student's selections, and the final score.
type Review struct {
	Score     float64               `json:"score"`
	Questions []domain.QuizQuestion `json:"questions"`
	Answers   map[int]int           `json:"answers"`
}

// Snapshot is an immutable view of a session, published to subscribers on
// every transition.
type Snapshot struct {
	Student       string
	State         SessionState
	Reason        string
	QuestionIndex int
	QuestionCount int
	Question      *domain.QuizQuestion
	Selected      int // -1 when nothing is picked for the current question
	Review        *Review
}

// Session is the transient state of one quiz attempt for a single student.
// It starts in Loading and is driven to a terminal state by discrete
// commands; there is no backward navigation.
type Session struct {
	student string
	rnd     *rand.Rand

	mu          sync.RWMutex
	state       SessionState
	reason      string
	questions   []domain.QuizQuestion
	current     int
	answers     map[int]int
	review      *Review
	subscribers map[chan Snapshot]struct{}
}

// NewSession creates a session in the Loading state.
func NewSession(student string) *Session {
	return &Session{
		student:     student,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		state:       StateLoading,
		answers:     make(map[int]int),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// begin resolves the Loading state from generator output. It is called from
// a goroutine owned by the service; if the student exited while the request
// was in flight the result is discarded without a transition.
func (s *Session) begin(ctx context.Context, generator QuizGenerator, topic string) {
	questions, err := generator.GenerateQuiz(ctx, topic)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return
	}
	if err != nil {
		s.state = StateError
		s.reason = ReasonUnavailable
		s.broadcastLocked()
		return
	}

	kept := make([]domain.QuizQuestion, 0, MaxQuestions)
	for _, q := range questions {
		if len(kept) == MaxQuestions {
			break
		}
		// Malformed questions are dropped individually rather than failing the batch.
		if len(q.Options) < 4 || q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			continue
		}
		kept = append(kept, shuffleOptions(s.rnd, q))
	}
	if len(kept) == 0 {
		s.state = StateError
		s.reason = ReasonUnavailable
		s.broadcastLocked()
		return
	}

	s.questions = kept
	s.current = 0
	s.state = StateInProgress
	s.broadcastLocked()
}

// deny resolves the Loading state into a terminal Error without ever having
// contacted the generator.
func (s *Session) deny(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return
	}
	s.state = StateError
	s.reason = reason
	s.broadcastLocked()
}

// SelectOption records the answer for the current question, overwriting any
// prior choice. Legal only while the session is InProgress.
func (s *Session) SelectOption(optionIndex int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.snapshotLocked(), domain.ErrSessionNotActive
	}
	if optionIndex < 0 || optionIndex >= len(s.questions[s.current].Options) {
		return s.snapshotLocked(), domain.ErrOptionOutOfRange
	}
	s.answers[s.current] = optionIndex
	return s.broadcastLocked(), nil
}

// Advance moves to the next question, or completes the quiz when the current
// question is the last one. The current question must have an answer; skipping
// is not allowed. The returned bool is true exactly once, on the call that
// completes the session.
func (s *Session) Advance() (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.snapshotLocked(), false, domain.ErrSessionNotActive
	}
	if _, ok := s.answers[s.current]; !ok {
		return s.snapshotLocked(), false, domain.ErrNoAnswerSelected
	}

	if s.current < len(s.questions)-1 {
		s.current++
		return s.broadcastLocked(), false, nil
	}

	answers := make(map[int]int, len(s.answers))
	for i, picked := range s.answers {
		answers[i] = picked
	}
	questions := make([]domain.QuizQuestion, len(s.questions))
	copy(questions, s.questions)
	s.review = &Review{
		Score:     scoreAnswers(s.questions, s.answers),
		Questions: questions,
		Answers:   answers,
	}
	s.state = StateCompleted
	return s.broadcastLocked(), true, nil
}

// Exit abandons the session from any non-terminal state, discarding all
// collected answers without recording a result.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return
	}
	s.state = StateExited
	s.answers = make(map[int]int)
	s.broadcastLocked()
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot immediately and then
// one per transition. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot so a slow reader never blocks a transition.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Student:       s.student,
		State:         s.state,
		Reason:        s.reason,
		QuestionIndex: s.current,
		QuestionCount: len(s.questions),
		Selected:      -1,
		Review:        s.review,
	}
	if s.state == StateInProgress {
		q := s.questions[s.current]
		q.Options = append([]string(nil), q.Options...)
		snap.Question = &q
		if picked, ok := s.answers[s.current]; ok {
			snap.Selected = picked
		}
	}
	return snap
}

// scoreAnswers tallies 0.5 points per question whose recorded answer matches
// its correct index. Missing answers never match.
func scoreAnswers(questions []domain.QuizQuestion, answers map[int]int) float64 {
	correct := 0
	for i, q := range questions {
		if picked, ok := answers[i]; ok && picked == q.CorrectAnswer {
			correct++
		}
	}
	return float64(correct) * 0.5
}
