package app

import (
	"time"

	"english-star-service/internal/domain"
)

// CanTakeQuiz reports whether the student may start a new daily quiz at the
// given moment. True when no quiz was ever completed, or when the last one
// was completed on a different calendar date. Pure string comparison against
// the canonical rendering of now; no timezone normalization.
func CanTakeQuiz(user domain.User, now time.Time) bool {
	if user.LastQuizDate == "" {
		return true
	}
	return user.LastQuizDate != domain.QuizDate(now)
}
