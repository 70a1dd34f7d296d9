package middleware

import (
	"net/http"

	autherrors "github.com/achla24/LeaveEase/internal/auth/errors"
	"github.com/achla24/LeaveEase/internal/shared/apperror"
	"github.com/achla24/LeaveEase/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by anything that can answer whether a role may
// perform an action on a resource.
type RBACService interface {
	Enforce(role, resource, action string) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if c.GetString("user_id") == "" {
			response.AbortError(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(role, resource, action)
		if err != nil {
			response.AbortError(c, apperror.ErrInternal)
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, autherrors.ErrForbidden.Code, autherrors.ErrForbidden.Message, gin.H{
				"required": resource + ":" + action,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
