package exam

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/saralgov/licence-backend/internal/model"
)

func TestScoreRounding(t *testing.T) {
	cases := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"empty set", 0, 0, 0},
		{"all correct", 4, 4, 100},
		{"none correct", 0, 10, 0},
		{"six of ten", 6, 10, 60},
		{"seven of ten is exactly passing", 7, 10, 70},
		{"eight of nine rounds up", 8, 9, 89},       // 88.88…
		{"exact half rounds away", 1, 8, 13},        // 12.5
		{"exact half near boundary", 5, 8, 63},      // 62.5
		{"just under pass boundary", 16, 23, 70},    // 69.56… rounds to 70
		{"half at pass boundary", 7, 20, 35},        // 35.0
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.correct, tc.total))
		})
	}
}

func TestCountCorrectIgnoresUnknownAnswers(t *testing.T) {
	questions := makeQuestions(model.LanguageEnglish, 3)
	answers := map[uuid.UUID]int{
		questions[0].ID: questions[0].CorrectIndex,
		questions[1].ID: (questions[1].CorrectIndex + 1) % model.OptionCount,
	}

	assert.Equal(t, 1, CountCorrect(questions, answers))

	// A question absent from the answer map is simply incorrect.
	assert.Equal(t, 0, CountCorrect(questions[2:], map[uuid.UUID]int{}))
}
