package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrUserAccessOnly   ErrCode = "USER_ACCESS_ONLY"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrNoQuestions        ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrNoActiveSession    ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionInProgress  ErrCode = "SESSION_IN_PROGRESS"
	ErrExamSubmitted      ErrCode = "EXAM_ALREADY_SUBMITTED"
	ErrExamNotStarted     ErrCode = "EXAM_NOT_STARTED"
	ErrExamAlreadyPassed  ErrCode = "EXAM_ALREADY_PASSED"
	ErrResultPersist      ErrCode = "RESULT_PERSIST_FAILED"
	ErrKYCRequired        ErrCode = "KYC_APPROVAL_REQUIRED"
	ErrKYCPending         ErrCode = "KYC_REVIEW_PENDING"
	ErrKYCAlreadyReviewed ErrCode = "KYC_ALREADY_REVIEWED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrUserAccessOnly:
		return "This resource is restricted to citizen accounts."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrNoQuestions:
		return "No exam questions available. Please try again or contact support."
	case ErrNoActiveSession:
		return "No active exam session. Create one first."
	case ErrSessionInProgress:
		return "An exam session is already in progress."
	case ErrExamSubmitted:
		return "This exam has already been submitted."
	case ErrExamNotStarted:
		return "The exam has not been started yet."
	case ErrExamAlreadyPassed:
		return "You have already passed the exam."
	case ErrResultPersist:
		return "Your exam was graded but the result could not be saved. Please contact support; do not retake the exam."
	case ErrKYCRequired:
		return "Your identity submission must be approved before taking the exam."
	case ErrKYCPending:
		return "Your identity submission is awaiting review."
	case ErrKYCAlreadyReviewed:
		return "This identity submission has already been reviewed."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File exceeds the maximum allowed size."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal error occurred. Please try again later."
	}
	return "Unknown error."
}
