package model

import (
	"github.com/google/uuid"
)

// Supported question languages.
const (
	LanguageEnglish = "en"
	LanguageNepali  = "ne"
)

// AlternateLanguage returns the language tried next when the preferred
// pool is empty.
func AlternateLanguage(lang string) string {
	if lang == LanguageNepali {
		return LanguageEnglish
	}
	return LanguageNepali
}

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// Option is a single answer choice: plain text, or text with an image.
type Option struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Question is a theory-exam question. Exactly one of Text and ImageURL
// is populated as the prompt. CorrectIndex is zero-based into Options.
type Question struct {
	ID           uuid.UUID `json:"id"`
	Language     string    `json:"language"`
	Text         string    `json:"text,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Options      []Option  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	Category     string    `json:"category,omitempty"`
}

// QuestionForCitizen is a question with the correct answer stripped.
// This is the only shape that leaves the server during a live exam.
type QuestionForCitizen struct {
	ID       uuid.UUID `json:"id"`
	Language string    `json:"language"`
	Text     string    `json:"text,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	Options  []Option  `json:"options"`
	Category string    `json:"category,omitempty"`
}

// Sanitize strips the correct answer for delivery to an exam taker.
func (q Question) Sanitize() QuestionForCitizen {
	return QuestionForCitizen{
		ID:       q.ID,
		Language: q.Language,
		Text:     q.Text,
		ImageURL: q.ImageURL,
		Options:  q.Options,
		Category: q.Category,
	}
}

// CreateQuestionRequest is the admin payload for creating a question.
type CreateQuestionRequest struct {
	Language     string   `json:"language" binding:"required,oneof=en ne"`
	Text         string   `json:"text" binding:"required_without=ImageURL,max=2000"`
	ImageURL     string   `json:"image_url" binding:"required_without=Text,max=500"`
	Options      []Option `json:"options" binding:"required,len=4"`
	CorrectIndex *int     `json:"correct_index" binding:"required,min=0,max=3"`
	Category     string   `json:"category" binding:"max=100"`
}

// UpdateQuestionRequest is the admin payload for editing a question.
type UpdateQuestionRequest struct {
	Language     string   `json:"language" binding:"omitempty,oneof=en ne"`
	Text         string   `json:"text" binding:"omitempty,max=2000"`
	ImageURL     string   `json:"image_url" binding:"omitempty,max=500"`
	Options      []Option `json:"options" binding:"omitempty,len=4"`
	CorrectIndex *int     `json:"correct_index" binding:"omitempty,min=0,max=3"`
	Category     string   `json:"category" binding:"omitempty,max=100"`
}
