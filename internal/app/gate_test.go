package app

import (
	"testing"
	"time"

	"english-star-service/internal/domain"
)

func TestCanTakeQuiz(t *testing.T) {
	now := time.Date(2025, time.March, 4, 9, 30, 0, 0, time.UTC)

	if !CanTakeQuiz(domain.User{Name: "Lan"}, now) {
		t.Fatalf("expected user without a quiz date to be eligible")
	}

	today := domain.QuizDate(now)
	if CanTakeQuiz(domain.User{Name: "Lan", LastQuizDate: today}, now) {
		t.Fatalf("expected user who took today's quiz to be denied")
	}

	yesterday := domain.QuizDate(now.AddDate(0, 0, -1))
	if !CanTakeQuiz(domain.User{Name: "Lan", LastQuizDate: yesterday}, now) {
		t.Fatalf("expected user with yesterday's quiz date to be eligible")
	}

	if !CanTakeQuiz(domain.User{Name: "Lan", LastQuizDate: "not a date"}, now) {
		t.Fatalf("expected any non-today value to be eligible")
	}
}
