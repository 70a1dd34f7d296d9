package dashboard

import (
	"net/http"

	"github.com/achla24/LeaveEase/internal/shared/apperror"
	"github.com/achla24/LeaveEase/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("dashboard.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.handler")
	}
	return &Handler{service: service, logger: l}
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		ID:       c.GetString("user_id"),
		Username: c.GetString("username"),
		FullName: c.GetString("full_name"),
	}
}

// respond writes data, or the mapped error when err is set.
func (h *Handler) respond(c *gin.Context, data any, err error) {
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("dashboard request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", httpErr.Status),
			zap.Error(err),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}
	response.Success(c, http.StatusOK, data, nil)
}

func (h *Handler) MyStats(c *gin.Context) {
	resp, err := h.service.MyStats(c.Request.Context(), actorFrom(c))
	h.respond(c, resp, err)
}

func (h *Handler) Quarterly(c *gin.Context) {
	resp, err := h.service.Quarterly(c.Request.Context(), actorFrom(c))
	h.respond(c, resp, err)
}

func (h *Handler) UpcomingLeaves(c *gin.Context) {
	resp, err := h.service.UpcomingLeaves(c.Request.Context())
	h.respond(c, resp, err)
}

func (h *Handler) TeamOnLeave(c *gin.Context) {
	resp, err := h.service.TeamOnLeave(c.Request.Context())
	h.respond(c, resp, err)
}

func (h *Handler) Notifications(c *gin.Context) {
	resp, err := h.service.Notifications(c.Request.Context())
	h.respond(c, resp, err)
}

func (h *Handler) PendingRequests(c *gin.Context) {
	resp, err := h.service.PendingRequests(c.Request.Context())
	h.respond(c, resp, err)
}

func (h *Handler) AllRequests(c *gin.Context) {
	resp, err := h.service.AllRequests(c.Request.Context())
	h.respond(c, resp, err)
}

func (h *Handler) EmployeeStats(c *gin.Context) {
	resp, err := h.service.EmployeeStats(c.Request.Context())
	h.respond(c, resp, err)
}

func (h *Handler) DepartmentStats(c *gin.Context) {
	resp, err := h.service.DepartmentStats(c.Request.Context())
	h.respond(c, resp, err)
}
