package credentialerrors

import (
	"net/http"

	"github.com/achla24/LeaveEase/internal/shared/apperror"
)

var (
	ErrAppPasswordRequired = apperror.New(
		apperror.CodeValidation,
		"Please provide appPassword (Gmail App Password)",
		http.StatusBadRequest,
	)
	ErrActorNotFound = apperror.New(
		apperror.CodeNotFound,
		"HR user not found. Please ensure you're logged in as HR.",
		http.StatusNotFound,
	)
	ErrActorEmailMissing = apperror.New(
		apperror.CodeInvalidInput,
		"HR user has no email address on file",
		http.StatusBadRequest,
	)
)
