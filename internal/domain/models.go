package domain

import (
	"sort"
	"time"
)

// User is the single local student profile. LastQuizDate holds the canonical
// date string of the last completed daily quiz; empty means no quiz yet.
type User struct {
	Name         string `json:"name"`
	LastQuizDate string `json:"lastQuizDate,omitempty"`
}

// QuizQuestion is one multiple-choice question with exactly one correct
// option. CorrectAnswer indexes into Options and stays valid across option
// shuffling.
type QuizQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizResult is one completed quiz attempt on the leaderboard. Score is a
// multiple of 0.5 in [0, questions*0.5]. Immutable once appended.
type QuizResult struct {
	StudentName string  `json:"studentName"`
	Score       float64 `json:"score"`
	Date        string  `json:"date"`
}

// ChatRole tags a turn in the tutor conversation.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the tutor conversation history.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Skill names a practice area on the dashboard.
type Skill string

const (
	SkillReading       Skill = "Reading"
	SkillWriting       Skill = "Writing"
	SkillListening     Skill = "Listening"
	SkillPronunciation Skill = "Pronunciation"
)

// SortResults orders results by score descending. The sort is stable so
// equal scores keep insertion order.
func SortResults(results []QuizResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// quizDateLayout matches the rendering used when LastQuizDate is written, so
// the eligibility gate compares like with like.
const quizDateLayout = "Mon Jan 02 2006"

// resultDateLayout is the display form stamped on leaderboard entries.
const resultDateLayout = "1/2/2006"

// QuizDate renders the canonical date string used for the once-per-day gate.
func QuizDate(now time.Time) string {
	return now.Format(quizDateLayout)
}

// ResultDate renders the display date stamped on a QuizResult.
func ResultDate(now time.Time) string {
	return now.Format(resultDateLayout)
}
