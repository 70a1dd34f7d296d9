package response

import (
	"net/http"

	"github.com/achla24/LeaveEase/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

type PaginationMeta struct {
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

// MaxPageSize bounds page_size on list endpoints.
const MaxPageSize = 100

// Paginate slices items for the given 1-based page. Pages past the end are
// empty; page_size is clamped to [1, MaxPageSize].
func Paginate[T any](items []T, page, pageSize int) ([]T, PaginationMeta) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	start := len(items)
	if page-1 < len(items)/pageSize+1 {
		start = min((page-1)*pageSize, len(items))
	}
	end := min(start+pageSize, len(items))

	return items[start:end], NewPaginationMeta(int64(len(items)), page, pageSize)
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ApiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
		Meta: meta,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: &ErrorBody{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
	})
}

// BindError writes a 400 for a request body that failed decoding or validation.
func BindError(c *gin.Context, err error) {
	mapped := apperror.MapValidationError(err)
	Error(c, http.StatusBadRequest, apperror.CodeValidation, mapped.Message, err.Error())
}

// AbortError writes the envelope and stops the handler chain. Used by middleware.
func AbortError(c *gin.Context, appErr *apperror.AppError) {
	Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
	c.Abort()
}
