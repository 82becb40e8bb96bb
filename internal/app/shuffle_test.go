package app

import (
	"math/rand"
	"sort"
	"testing"

	"english-star-service/internal/domain"
)

func TestShuffleOptionsPreservesContent(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	q := domain.QuizQuestion{
		ID:            1,
		Question:      "Pick C",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: 2,
	}

	for i := 0; i < 100; i++ {
		out := shuffleOptions(rnd, q)

		if out.CorrectAnswer < 0 || out.CorrectAnswer >= len(out.Options) {
			t.Fatalf("correct index out of range: %d", out.CorrectAnswer)
		}
		if out.Options[out.CorrectAnswer] != "C" {
			t.Fatalf("correct option text changed: got %q", out.Options[out.CorrectAnswer])
		}

		got := append([]string(nil), out.Options...)
		want := append([]string(nil), q.Options...)
		sort.Strings(got)
		sort.Strings(want)
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("option multiset changed: %v vs %v", out.Options, q.Options)
			}
		}
	}

	// The input must stay untouched; shuffling produces a new copy.
	if q.CorrectAnswer != 2 || q.Options[2] != "C" {
		t.Fatalf("input question mutated: %+v", q)
	}
}

func TestShuffleOptionsIsUniform(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	q := domain.QuizQuestion{
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: 0,
	}

	var counts [4]int
	for i := 0; i < 1000; i++ {
		out := shuffleOptions(rnd, q)
		counts[out.CorrectAnswer]++
	}
	for pos, n := range counts {
		if n < 180 || n > 320 {
			t.Fatalf("position %d hit %d times out of 1000, expected roughly 250 (%v)", pos, n, counts)
		}
	}
}

func TestShuffleOptionsWithDuplicateTexts(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	q := domain.QuizQuestion{
		Options:       []string{"same", "same", "same", "diff"},
		CorrectAnswer: 1,
	}

	// Index-based shuffling keeps the designated option tracked even when
	// texts collide; text matching would always resolve to the first "same".
	var positions [4]bool
	for i := 0; i < 1000; i++ {
		out := shuffleOptions(rnd, q)
		if out.CorrectAnswer < 0 || out.CorrectAnswer >= len(out.Options) {
			t.Fatalf("correct index out of range: %d", out.CorrectAnswer)
		}
		positions[out.CorrectAnswer] = true
	}
	for pos, seen := range positions {
		if !seen {
			t.Fatalf("correct index never landed on position %d", pos)
		}
	}
}
