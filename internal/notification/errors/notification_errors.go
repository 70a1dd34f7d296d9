package notificationerrors

import (
	"net/http"

	"github.com/achla24/LeaveEase/internal/shared/apperror"
)

var (
	ErrActorNotFound = apperror.New(
		apperror.CodeEmployeeNotFound,
		"HR user not found. Please ensure you're logged in as HR.",
		http.StatusNotFound,
	)
	ErrDeliveryFailed = apperror.New(
		apperror.CodeNotificationFailed,
		"Email delivery failed",
		http.StatusInternalServerError,
	)
	ErrWebhookUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"N8N connection failed",
		http.StatusServiceUnavailable,
	)
	ErrTestEmailRequired = apperror.New(
		apperror.CodeValidation,
		"Please provide testEmail in request body",
		http.StatusBadRequest,
	)
)
