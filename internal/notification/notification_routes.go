package notification

import (
	"github.com/achla24/LeaveEase/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(leaves *gin.RouterGroup, handler *Handler, authz middleware.RBACService, limit gin.HandlerFunc) {
	test := middleware.RBACAuthorize(authz, "notification", "test")

	leaves.POST("/test-email", test, limit, handler.TestEmail)
	leaves.GET("/test-n8n", test, limit, handler.TestWebhook)
	leaves.GET("/email-status", test, handler.EmailStatus)
}
