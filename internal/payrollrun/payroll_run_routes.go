package payrollrun

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	runs := r.Group("/payroll-runs")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.GET("", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetAll)
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetById)
		runs.GET("/:id/payslips", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetPayslipsByRun)
		runs.POST("", middleware.RBACAuthorize(rbacService, "payroll_run", "create"), handler.Create)
		if redisClient != nil {
			runs.POST(
				"/:id/process",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll_run", "process"),
				handler.Process,
			)
		} else {
			runs.POST("/:id/process", middleware.RBACAuthorize(rbacService, "payroll_run", "process"), handler.Process)
		}
		runs.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll_run", "delete"), handler.Delete)
	}

	payslips := r.Group("/payslips")
	payslips.Use(middleware.AuthMiddleware())
	{
		payslips.GET("/employee/:employeeId", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.GetPayslipsByEmployee)
	}
}
