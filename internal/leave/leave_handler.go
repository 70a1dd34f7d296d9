package leave

import (
	"errors"
	"net/http"
	"strconv"

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
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
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
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)

	var notifyErr *NotificationError
	if errors.As(err, &notifyErr) {
		response.Error(c, httpErr.Status, httpErr.Code, notifyErr.Result.Message, notifyErr.Result)
		return
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	actor := actorFrom(c)
	h.logger.Debug("http create leave", zap.String("actor_id", actor.ID))

	var req CreateLeaveRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		h.logger.Warn("http create leave validation failed", zap.Error(err))
		response.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Location", "/api/v1/leaves/"+resp.ID)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetMine(c *gin.Context) {
	resp, err := h.service.GetMine(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Stats(c *gin.Context) {
	resp, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateLeaveRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		h.logger.Warn("http update leave validation failed", zap.Error(err))
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

func (h *Handler) Approve(c *gin.Context) {
	resp, err := h.service.Approve(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req RejectLeaveRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		h.logger.Warn("http reject leave validation failed", zap.Error(err))
		response.BindError(c, err)
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.RejectionReason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) HRAction(c *gin.Context) {
	var req HRActionRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		h.logger.Warn("http hr action validation failed", zap.Error(err))
		response.BindError(c, err)
		return
	}

	resp, err := h.service.HRAction(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AIApprove(c *gin.Context) {
	result, err := h.service.AIApprove(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	h.writeResult(c, result, err)
}

func (h *Handler) AIReject(c *gin.Context) {
	var req RejectLeaveRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.AIReject(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.RejectionReason)
	h.writeResult(c, result, err)
}

func (h *Handler) HRApprove(c *gin.Context) {
	result, err := h.service.HRApprove(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	h.writeResult(c, result, err)
}

func (h *Handler) HRReject(c *gin.Context) {
	var req RejectLeaveRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.HRReject(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.RejectionReason)
	h.writeResult(c, result, err)
}

func (h *Handler) writeResult(c *gin.Context, result DecisionResult, err error) {
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !result.Success {
		h.logger.Warn("leave decided without notification",
			zap.String("path", c.FullPath()),
			zap.String("leave_id", c.Param("id")),
			zap.String("message", result.Message),
		)
	}

	response.Success(c, http.StatusOK, result, nil)
}
