package memory

import (
	"context"

	"english-star-service/internal/domain"
)

// StaticGenerator serves a fixed question list (useful for tests/demos and
// for running without an AI API key).
type StaticGenerator struct {
	questions []domain.QuizQuestion
}

func NewStaticGenerator(questions []domain.QuizQuestion) *StaticGenerator {
	return &StaticGenerator{questions: questions}
}

func (g *StaticGenerator) GenerateQuiz(_ context.Context, _ string) ([]domain.QuizQuestion, error) {
	if len(g.questions) == 0 {
		return nil, domain.ErrQuizUnavailable
	}
	out := make([]domain.QuizQuestion, len(g.questions))
	for i, q := range g.questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out, nil
}
