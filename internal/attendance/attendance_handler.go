package attendance

import (
	"net/http"
	"strconv"

	attendanceerrors "github.com/achla24/LeaveEase/internal/attendance/errors"
	"github.com/achla24/LeaveEase/internal/shared/apperror"
	"github.com/achla24/LeaveEase/internal/shared/request"
	"github.com/achla24/LeaveEase/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
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

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("late attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) MarkLate(c *gin.Context) {
	var req MarkLateRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.MarkLate(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetMine(c *gin.Context) {
	h.list(c, func() ([]LateAttendanceResponse, error) {
		return h.service.GetMine(c.Request.Context(), actorFrom(c))
	})
}

func (h *Handler) GetByEmployee(c *gin.Context) {
	h.list(c, func() ([]LateAttendanceResponse, error) {
		return h.service.GetByEmployee(c.Request.Context(), c.Param("name"))
	})
}

func (h *Handler) GetByDate(c *gin.Context) {
	h.list(c, func() ([]LateAttendanceResponse, error) {
		return h.service.GetByDate(c.Request.Context(), c.Param("date"))
	})
}

func (h *Handler) GetInRange(c *gin.Context) {
	h.list(c, func() ([]LateAttendanceResponse, error) {
		return h.service.GetInRange(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	})
}

func (h *Handler) list(c *gin.Context, load func() ([]LateAttendanceResponse, error)) {
	resp, err := load()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(response.MaxPageSize)))

	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) CheckMine(c *gin.Context) {
	resp, err := h.service.CheckMine(c.Request.Context(), actorFrom(c), c.Param("date"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CountMine(c *gin.Context) {
	year, yerr := strconv.Atoi(c.Param("year"))
	month, merr := strconv.Atoi(c.Param("month"))
	if yerr != nil || merr != nil {
		h.writeServiceError(c, attendanceerrors.ErrInvalidMonth)
		return
	}

	resp, err := h.service.CountMine(c.Request.Context(), actorFrom(c), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateLateRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
