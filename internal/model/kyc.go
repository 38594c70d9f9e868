package model

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus tracks an identity submission through admin review.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// KYCSubmission is a citizen's identity-verification record. Exam
// eligibility is gated on an approved submission.
type KYCSubmission struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	DocumentType   string     `json:"document_type"`
	DocumentNumber string     `json:"document_number"`
	DocumentURL    string     `json:"document_url,omitempty"`
	DateOfBirth    string     `json:"date_of_birth"`
	Address        string     `json:"address"`
	Status         KYCStatus  `json:"status"`
	ReviewNote     string     `json:"review_note,omitempty"`
	ReviewedBy     *uuid.UUID `json:"reviewed_by,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
}

// SubmitKYCRequest is the citizen payload for identity submission.
type SubmitKYCRequest struct {
	DocumentType   string `json:"document_type" binding:"required,oneof=citizenship passport national_id"`
	DocumentNumber string `json:"document_number" binding:"required,min=3,max=50"`
	DocumentURL    string `json:"document_url" binding:"omitempty,max=500"`
	DateOfBirth    string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Address        string `json:"address" binding:"required,min=5,max=500"`
}

// ReviewKYCRequest is the admin payload for approving or rejecting.
type ReviewKYCRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" binding:"max=1000"`
}
