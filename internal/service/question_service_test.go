package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saralgov/licence-backend/internal/model"
)

func validTestQuestion() *model.Question {
	return &model.Question{
		Language:     model.LanguageEnglish,
		Text:         "What does a red traffic light mean?",
		CorrectIndex: 1,
		Options: []model.Option{
			{Text: "Go"},
			{Text: "Stop"},
			{Text: "Slow down"},
			{ImageURL: "/uploads/questions/sign.png"},
		},
	}
}

func TestValidateQuestion(t *testing.T) {
	t.Run("valid question passes", func(t *testing.T) {
		assert.NoError(t, validateQuestion(validTestQuestion()))
	})

	t.Run("image-only prompt passes", func(t *testing.T) {
		q := validTestQuestion()
		q.Text = ""
		q.ImageURL = "/uploads/questions/junction.png"
		assert.NoError(t, validateQuestion(q))
	})

	t.Run("empty prompt rejected", func(t *testing.T) {
		q := validTestQuestion()
		q.Text = ""
		assert.ErrorIs(t, validateQuestion(q), ErrBadPrompt)
	})

	t.Run("blank option rejected", func(t *testing.T) {
		q := validTestQuestion()
		q.Options[2] = model.Option{}
		assert.ErrorIs(t, validateQuestion(q), ErrBadOption)
	})

	t.Run("correct index past options rejected", func(t *testing.T) {
		q := validTestQuestion()
		q.CorrectIndex = 4
		assert.ErrorIs(t, validateQuestion(q), ErrBadIndex)
	})

	t.Run("negative correct index rejected", func(t *testing.T) {
		q := validTestQuestion()
		q.CorrectIndex = -1
		assert.ErrorIs(t, validateQuestion(q), ErrBadIndex)
	})
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, model.LanguageEnglish, normalizeLanguage(""))
	assert.Equal(t, model.LanguageEnglish, normalizeLanguage("fr"))
	assert.Equal(t, model.LanguageEnglish, normalizeLanguage(model.LanguageEnglish))
	assert.Equal(t, model.LanguageNepali, normalizeLanguage(model.LanguageNepali))
}
