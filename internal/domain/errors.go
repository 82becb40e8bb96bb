package domain

import "errors"

var (
	// ErrUserNotFound is returned when no student profile has been registered.
	ErrUserNotFound = errors.New("no registered student")
	// ErrEmptyName rejects registration with a blank student name.
	ErrEmptyName = errors.New("student name must not be empty")
	// ErrAlreadyTakenToday is the eligibility gate denial.
	ErrAlreadyTakenToday = errors.New("quiz already taken today")
	// ErrQuizUnavailable indicates the generator failed or returned no usable questions.
	ErrQuizUnavailable = errors.New("quiz unavailable")
	// ErrSessionNotFound is returned when no quiz session exists for the student.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotActive is returned for commands sent outside InProgress.
	ErrSessionNotActive = errors.New("quiz session not active")
	// ErrNoAnswerSelected blocks advancing past an unanswered question.
	ErrNoAnswerSelected = errors.New("no answer selected for current question")
	// ErrOptionOutOfRange indicates a selected option index is invalid.
	ErrOptionOutOfRange = errors.New("option index out of range")
)
