package leaveerrors

import (
	"net/http"

	"github.com/achla24/LeaveEase/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidDate,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidDate,
		"startDate must be before or equal to endDate",
		http.StatusBadRequest,
	)
	ErrEmployeeNameRequired = apperror.New(
		apperror.CodeInvalidInput,
		"employeeName is required",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeLeaveNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeLeaveNotPending,
		"only pending leave requests can be edited",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid action. Use 'approve' or 'reject'",
		http.StatusBadRequest,
	)
	ErrHRUserNotFound = apperror.New(
		apperror.CodeEmployeeNotFound,
		"HR user not found. Please ensure you're logged in as HR.",
		http.StatusNotFound,
	)
)
