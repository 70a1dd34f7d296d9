package credential

import (
	"context"
	"net/http"

	credentialerrors "github.com/achla24/LeaveEase/internal/credential/errors"
	"github.com/achla24/LeaveEase/internal/shared/apperror"
	"github.com/achla24/LeaveEase/internal/shared/request"
	"github.com/achla24/LeaveEase/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActorDirectory resolves the mailbox of the logged-in user.
type ActorDirectory interface {
	ActorEmail(ctx context.Context, userID string) (string, bool, error)
}

type Handler struct {
	service Service
	actors  ActorDirectory
	logger  *zap.Logger
}

func NewHandler(service Service, actors ActorDirectory, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("credential.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credential.handler")
	}
	return &Handler{service: service, actors: actors, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("credential request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) actorEmail(c *gin.Context) (string, error) {
	email, found, err := h.actors.ActorEmail(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		return "", err
	}
	if !found {
		return "", credentialerrors.ErrActorNotFound
	}
	if email == "" {
		return "", credentialerrors.ErrActorEmailMissing
	}
	return email, nil
}

func (h *Handler) Configure(c *gin.Context) {
	var req ConfigureRequest
	if err := request.BindStrictJSON(c, &req); err != nil {
		response.BindError(c, err)
		return
	}

	email, err := h.actorEmail(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status, err := h.service.Configure(c.Request.Context(), email, req.AppPassword)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status.Message = "HR email configuration saved successfully and will persist across sessions"
	response.Success(c, http.StatusOK, status, nil)
}

func (h *Handler) Status(c *gin.Context) {
	email, err := h.actorEmail(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status, err := h.service.Status(c.Request.Context(), email)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, status, nil)
}

func (h *Handler) Remove(c *gin.Context) {
	email, err := h.actorEmail(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := h.service.Remove(c.Request.Context(), email); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"email": email, "removed": true}, nil)
}
