package attendance

import (
	"github.com/achla24/LeaveEase/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /late-attendance. Marking and the cross-employee
// reads are HR-only; employees see their own records.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler, authz middleware.RBACService) {
	mark := middleware.RBACAuthorize(authz, "attendance", "mark")
	read := middleware.RBACAuthorize(authz, "attendance", "read")
	own := middleware.RBACAuthorize(authz, "attendance", "read_own")

	late := protected.Group("/late-attendance")
	late.POST("/mark-late", mark, handler.MarkLate)
	late.GET("/my-late-records", own, handler.GetMine)
	late.GET("/check/:date", own, handler.CheckMine)
	late.GET("/count/:year/:month", own, handler.CountMine)

	late.GET("/employee/:name", read, handler.GetByEmployee)
	late.GET("/date/:date", read, handler.GetByDate)
	late.GET("/range", read, handler.GetInRange)

	late.PUT("/:id", mark, handler.Update)
	late.DELETE("/:id", middleware.RBACAuthorize(authz, "attendance", "delete"), handler.Delete)
}
