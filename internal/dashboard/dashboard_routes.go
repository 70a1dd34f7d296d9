package dashboard

import (
	"github.com/achla24/LeaveEase/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler, authz middleware.RBACService) {
	own := middleware.RBACAuthorize(authz, "dashboard", "read_own")
	hr := middleware.RBACAuthorize(authz, "dashboard", "read")

	d := protected.Group("/dashboard")
	d.GET("/my-stats", own, handler.MyStats)
	d.GET("/quarterly-data", own, handler.Quarterly)
	d.GET("/upcoming-leaves", own, handler.UpcomingLeaves)
	d.GET("/team-on-leave", own, handler.TeamOnLeave)
	d.GET("/notifications", own, handler.Notifications)

	d.GET("/hr/pending-requests", hr, handler.PendingRequests)
	d.GET("/hr/all-requests", hr, handler.AllRequests)
	d.GET("/hr/employee-stats", hr, handler.EmployeeStats)
	d.GET("/hr/department-stats", hr, handler.DepartmentStats)
}
