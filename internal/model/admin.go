package model

import (
	"time"

	"github.com/google/uuid"
)

// Permission codes embedded in admin JWT claims.
const (
	PermissionKYCReview     = "kyc:review"
	PermissionQuestionsRead = "questions:read"
	PermissionQuestionsEdit = "questions:edit"
	PermissionBlogEdit      = "blog:edit"
	PermissionResultsRead   = "results:read"
	PermissionLicenceIssue  = "licence:issue"
)

// AllPermissions lists every known permission code, used when seeding
// a super admin.
func AllPermissions() []string {
	return []string{
		PermissionKYCReview,
		PermissionQuestionsRead,
		PermissionQuestionsEdit,
		PermissionBlogEdit,
		PermissionResultsRead,
		PermissionLicenceIssue,
	}
}

// Admin is a back-office account.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
}
