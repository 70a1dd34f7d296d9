package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	leaveerrors "github.com/achla24/LeaveEase/internal/leave/errors"
	"github.com/achla24/LeaveEase/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		got := apperror.ToHTTP(apperror.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, got.Status)
		assert.Equal(t, apperror.CodeNotFound, got.Code)
	})

	t.Run("wrapped app error keeps its code", func(t *testing.T) {
		err := fmt.Errorf("load leave: %w", apperror.Wrap(errors.New("smtp 535"), apperror.CodeNotificationFailed, "Email delivery failed", http.StatusInternalServerError))
		got := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeNotificationFailed, got.Code)
		assert.Equal(t, "Email delivery failed", got.Message)
	})

	t.Run("leave domain code", func(t *testing.T) {
		err := fmt.Errorf("approve: %w", leaveerrors.ErrNotPending)
		got := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, apperror.CodeLeaveNotPending, got.Code)
	})

	t.Run("unknown error is internal", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: connection reset"))
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeInternalError, got.Code)
		assert.Equal(t, "Internal server error", got.Message)
	})

	t.Run("zero status defaults to 500", func(t *testing.T) {
		got := apperror.ToHTTP(&apperror.AppError{Code: "X", Message: "x"})
		assert.Equal(t, http.StatusInternalServerError, got.Status)
	})
}

func TestWrap(t *testing.T) {
	assert.Nil(t, apperror.Wrap(nil, apperror.CodeInternalError, "x", 500))

	cause := errors.New("boom")
	err := apperror.Wrap(cause, apperror.CodeInternalError, "failed", 500)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed: boom", err.Error())
}

type validationSample struct {
	StartDate       string `validate:"required"`
	RejectionReason string `validate:"max=3"`
}

func TestMapValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(validationSample{RejectionReason: "ok"})
	got := apperror.MapValidationError(err)
	assert.Equal(t, apperror.CodeValidation, got.Code)
	assert.Equal(t, "Start Date is required", got.Message)

	err = v.Struct(validationSample{StartDate: "2025-08-15", RejectionReason: "too long"})
	got = apperror.MapValidationError(err)
	assert.Equal(t, "Rejection Reason is invalid", got.Message)

	got = apperror.MapValidationError(errors.New("EOF"))
	assert.Equal(t, "Invalid input", got.Message)
	assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
}
