package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultStatus is the pass/fail outcome of a submitted exam.
type ResultStatus string

const (
	ResultStatusPassed ResultStatus = "passed"
	ResultStatusFailed ResultStatus = "failed"
)

// ExamResult is one completed exam attempt. Rows are append-only:
// written once at submission time and never mutated.
// StartExamRequest selects the question language for a new session or
// practice round.
type StartExamRequest struct {
	Language string `json:"language" binding:"omitempty,oneof=en ne"`
}

type ExamResult struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Status      ResultStatus `json:"status"`
	Score       int          `json:"score"`
	Categories  []string     `json:"categories"`
	CompletedAt time.Time    `json:"completed_at"`
}
