package leave

import (
	"github.com/achla24/LeaveEase/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the leave endpoints on an authenticated /leaves
// group. idempotent guards submission, limit throttles the AI variants.
func RegisterRoutes(
	leaves *gin.RouterGroup,
	handler *Handler,
	authz middleware.RBACService,
	idempotent gin.HandlerFunc,
	limit gin.HandlerFunc,
) {
	read := middleware.RBACAuthorize(authz, "leave", "read")
	decide := middleware.RBACAuthorize(authz, "leave", "decide")

	leaves.POST("", middleware.RBACAuthorize(authz, "leave", "create"), idempotent, handler.Create)
	leaves.GET("", read, handler.GetAll)
	leaves.GET("/my-leaves", middleware.RBACAuthorize(authz, "leave", "read_own"), handler.GetMine)
	leaves.GET("/stats", read, handler.Stats)
	leaves.GET("/:id", read, handler.GetByID)
	leaves.PUT("/:id", middleware.RBACAuthorize(authz, "leave", "update"), handler.Update)
	leaves.DELETE("/:id", middleware.RBACAuthorize(authz, "leave", "delete"), handler.Delete)

	leaves.PUT("/:id/approve", decide, handler.Approve)
	leaves.PUT("/:id/reject", decide, handler.Reject)
	leaves.PUT("/:id/hr-action", decide, handler.HRAction)
	leaves.PUT("/:id/ai-approve", decide, limit, handler.AIApprove)
	leaves.PUT("/:id/ai-reject", decide, limit, handler.AIReject)
	leaves.PUT("/:id/hr-approve", decide, handler.HRApprove)
	leaves.PUT("/:id/hr-reject", decide, handler.HRReject)
}
