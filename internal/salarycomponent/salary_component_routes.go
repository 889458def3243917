package salarycomponent

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	components := r.Group("/salary-components")
	components.Use(middleware.AuthMiddleware())
	{
		components.GET("", middleware.RBACAuthorize(rbacService, "salary_component", "read"), handler.GetAll)
		components.GET("/:id", middleware.RBACAuthorize(rbacService, "salary_component", "read"), handler.GetById)
		components.POST("", middleware.RBACAuthorize(rbacService, "salary_component", "create"), handler.Create)
		components.PUT("/:id", middleware.RBACAuthorize(rbacService, "salary_component", "update"), handler.Update)
		components.POST("/:id/deactivate", middleware.RBACAuthorize(rbacService, "salary_component", "update"), handler.Deactivate)
	}
}
