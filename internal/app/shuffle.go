package app

import (
	"math/rand"

	"english-star-service/internal/domain"
)

// shuffleOptions returns a copy of q with its options in randomized order and
// CorrectAnswer recomputed for the new order. The permutation is drawn with
// Fisher-Yates over index positions and the correct index is carried through
// it, so duplicate option texts cannot misplace the answer.
func shuffleOptions(rnd *rand.Rand, q domain.QuizQuestion) domain.QuizQuestion {
	perm := make([]int, len(q.Options))
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	out := q
	out.Options = make([]string, len(q.Options))
	for pos, src := range perm {
		out.Options[pos] = q.Options[src]
		if src == q.CorrectAnswer {
			out.CorrectAnswer = pos
		}
	}
	return out
}
