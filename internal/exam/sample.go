package exam

import (
	"math/rand/v2"

	"github.com/saralgov/licence-backend/internal/model"
)

// sample draws n distinct questions uniformly from pool without
// replacement: Fisher-Yates over a copy, then a prefix. Every
// arrangement of the result is equally likely.
func sample(pool []model.Question, n int, rng *rand.Rand) []model.Question {
	qs := make([]model.Question, len(pool))
	copy(qs, pool)

	rng.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})

	if n > len(qs) {
		n = len(qs)
	}
	return qs[:n]
}
