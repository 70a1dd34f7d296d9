package credential

import (
	"github.com/achla24/LeaveEase/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the HR email configuration endpoints on an already
// authenticated /leaves group.
func RegisterRoutes(leaves *gin.RouterGroup, handler *Handler, authz middleware.RBACService) {
	manage := middleware.RBACAuthorize(authz, "credential", "manage")

	leaves.POST("/hr-email-config", manage, handler.Configure)
	leaves.GET("/hr-email-config/status", manage, handler.Status)
	leaves.DELETE("/hr-email-config", manage, handler.Remove)
}
