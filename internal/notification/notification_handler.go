package notification

import (
	"context"
	"net/http"

	"github.com/achla24/LeaveEase/internal/shared/apperror"
	"github.com/achla24/LeaveEase/internal/shared/request"
	"github.com/achla24/LeaveEase/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Diagnostics backs the test endpoints.
type Diagnostics interface {
	TestWebhook(ctx context.Context) error
	TestEmail(ctx context.Context, to string) error
	EmailConfigured() bool
}

type TestEmailRequest struct {
	TestEmail string `json:"testEmail" binding:"omitempty,email"`
}

type Handler struct {
	diag   Diagnostics
	logger *zap.Logger
}

func NewHandler(diag Diagnostics, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("notification.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.handler")
	}
	return &Handler{diag: diag, logger: l}
}

func (h *Handler) TestEmail(c *gin.Context) {
	var req TestEmailRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.diag.TestEmail(c.Request.Context(), req.TestEmail); err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("test email failed", zap.String("to", req.TestEmail), zap.Error(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":    "Test email sent successfully!",
		"to":         req.TestEmail,
		"configured": h.diag.EmailConfigured(),
	}, nil)
}

func (h *Handler) EmailStatus(c *gin.Context) {
	configured := h.diag.EmailConfigured()
	message := "Email configuration is working"
	if !configured {
		message = "Email configuration needs setup"
	}

	response.Success(c, http.StatusOK, gin.H{
		"configured": configured,
		"message":    message,
	}, nil)
}

func (h *Handler) TestWebhook(c *gin.Context) {
	if err := h.diag.TestWebhook(c.Request.Context()); err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "N8N connection successful"}, nil)
}
