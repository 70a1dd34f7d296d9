package chat

import (
	"github.com/achla24/LeaveEase/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler, authz middleware.RBACService, limit gin.HandlerFunc) {
	use := middleware.RBACAuthorize(authz, "chat", "use")

	c := protected.Group("/ai-chat")
	c.POST("", use, limit, handler.Ask)
	c.GET("/test", use, handler.Test)
	c.GET("/ws", use, handler.Stream)
}
