package app

import (
	"database/sql"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/leave"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrollrun"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/salarystructure"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	componentRepo := salarycomponent.NewRepository(gormDB)
	structureRepo := salarystructure.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	runRepo := payrollrun.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	componentService := salarycomponent.NewService(db, componentRepo, rdb)
	structureService := salarystructure.NewService(db, structureRepo, componentRepo)
	employeeService := employee.NewService(db, employeeRepo)
	attendanceService := attendance.NewService(db, attendanceRepo)
	leaveService := leave.NewService(db, leaveRepo, attendance.NewLeaveRecorder(attendanceRepo))
	runService := payrollrun.NewService(
		db,
		runRepo,
		employeeRepo,
		attendanceRepo,
		structureService,
		outboxRepo,
	)

	// --- Handlers ---
	componentHandler := salarycomponent.NewHandler(componentService)
	structureHandler := salarystructure.NewHandler(structureService)
	employeeHandler := employee.NewHandler(employeeService)
	attendanceHandler := attendance.NewHandler(attendanceService, rbacService)
	leaveHandler := leave.NewHandler(leaveService)
	runHandler := payrollrun.NewHandlerWithRedis(runService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		salarycomponent.RegisterRoutes(api, componentHandler, rbacService)
		salarystructure.RegisterRoutes(api, structureHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		payrollrun.RegisterRoutes(api, runHandler, rbacService, rdb)
	}

	return nil
}
