package model

import (
	"time"

	"github.com/google/uuid"
)

// LicenceStatus tracks a licence from the automatic pass-triggered
// pending record through admin issuance.
type LicenceStatus string

const (
	LicenceStatusPending LicenceStatus = "pending"
	LicenceStatusIssued  LicenceStatus = "issued"
)

// Licence is created automatically when a citizen passes the theory
// exam and is verified and issued by an admin afterwards.
type Licence struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	ExamResultID  uuid.UUID     `json:"exam_result_id"`
	LicenceNumber string        `json:"licence_number,omitempty"`
	Status        LicenceStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	IssuedAt      *time.Time    `json:"issued_at,omitempty"`
}

// IssueLicenceRequest is the admin payload for issuing a licence.
type IssueLicenceRequest struct {
	LicenceNumber string `json:"licence_number" binding:"required,min=4,max=50"`
}
