package attendanceerrors

import (
	"net/http"

	"github.com/achla24/LeaveEase/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidDate,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidDate,
		"startDate must be before or equal to endDate",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"year and month must identify a calendar month",
		http.StatusBadRequest,
	)
	ErrEmployeeNameRequired = apperror.New(
		apperror.CodeInvalidInput,
		"employeeName is required",
		http.StatusBadRequest,
	)
	ErrAlreadyMarkedLate = apperror.New(
		apperror.CodeAlreadyMarkedLate,
		"Employee already marked as late on this date",
		http.StatusConflict,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Late attendance record not found",
		http.StatusNotFound,
	)
)
