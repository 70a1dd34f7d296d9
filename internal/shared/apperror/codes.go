package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeRateLimited  = "RATE_LIMITED"

	// Leave domain
	CodeInvalidDate       = "INVALID_DATE"
	CodeLeaveNotFound     = "LEAVE_NOT_FOUND"
	CodeLeaveNotPending   = "LEAVE_NOT_PENDING"
	CodeEmployeeNotFound  = "EMPLOYEE_NOT_FOUND"
	CodeAlreadyMarkedLate = "ALREADY_MARKED_LATE"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeNotificationFailed = "NOTIFICATION_FAILED"
)
