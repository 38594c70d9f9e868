package exam

import (
	"math"

	"github.com/google/uuid"
	"github.com/saralgov/licence-backend/internal/model"
)

// CountCorrect compares the answer map against the questions' correct
// indexes. A question absent from answers counts as incorrect.
func CountCorrect(questions []model.Question, answers map[uuid.UUID]int) int {
	correct := 0
	for _, q := range questions {
		if selected, ok := answers[q.ID]; ok && selected == q.CorrectIndex {
			correct++
		}
	}
	return correct
}

// Score returns the integer percentage for correct out of total.
// Rounding is half away from zero: 8/9 correct (88.9%) rounds to 89,
// and an exact .5 rounds up. The rule is fixed because it can move a
// score across the passing boundary.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
