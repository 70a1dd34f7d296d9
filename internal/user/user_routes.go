package user

import (
	"github.com/achla24/LeaveEase/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authz middleware.RBACService) {
	users := r.Group("/users")
	{
		users.GET("", middleware.RBACAuthorize(authz, "user", "read"), handler.GetAll)
		users.GET("/:id", middleware.RBACAuthorize(authz, "user", "read"), handler.GetByID)
		users.POST("", middleware.RBACAuthorize(authz, "user", "manage"), handler.Create)
		users.PUT("/:id", handler.UpdateProfile)
	}
}
