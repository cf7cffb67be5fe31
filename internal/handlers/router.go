package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/services"
	"github.com/UniPortal-2026/submission-service/internal/storage"
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

type HandlerManager struct {
	authHandler         *AuthHandler
	studentHandler      *StudentHandler
	professorHandler    *ProfessorHandler
	adminHandler        *AdminHandler
	notificationHandler *NotificationHandler
	authMiddleware      *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	fileStore storage.FileStore,
	userRepo repositories.UserRepository,
	jwtCfg config.JWTConfig,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), serviceManager.User(), jwtCfg, logger),
		studentHandler:      NewStudentHandler(serviceManager.Assignment(), fileStore, logger),
		professorHandler:    NewProfessorHandler(serviceManager.Review(), fileStore, logger),
		adminHandler:        NewAdminHandler(serviceManager.User(), serviceManager.Department(), serviceManager.Report(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		authMiddleware:      NewJWTAuthMiddleware(serviceManager.Auth(), userRepo, jwtCfg),
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Auth routes, no session required except /me.
	auth := v1.Group("/auth")
	{
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/logout", hm.authHandler.Logout)
		auth.POST("/forgot-password", hm.authHandler.ForgotPassword)
		auth.POST("/verify-otp", hm.authHandler.VerifyOTP)
		auth.POST("/reset-password", hm.authHandler.ResetPassword)
		auth.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Me)
	}

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Notification routes - all authenticated users
		notifications := authed.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.List)
			notifications.GET("/unread-count", hm.notificationHandler.UnreadCount)
			notifications.POST("/:id/read", hm.notificationHandler.MarkRead)
			notifications.POST("/read-all", hm.notificationHandler.MarkAllRead)
		}

		// Student routes - Students only
		student := authed.Group("/student")
		student.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			student.GET("/dashboard", hm.studentHandler.Dashboard)
			student.GET("/profile", hm.authHandler.GetProfile)
			student.PUT("/profile", hm.authHandler.UpdateProfile)
			student.GET("/professors", hm.studentHandler.ListProfessors)

			student.GET("/assignments", hm.studentHandler.ListAssignments)
			student.POST("/assignments", hm.studentHandler.CreateAssignment)
			student.GET("/assignments/:id", hm.studentHandler.GetAssignment)
			student.PUT("/assignments/:id", hm.studentHandler.UpdateAssignment)
			student.POST("/assignments/:id/submit", hm.studentHandler.SubmitAssignment)
			student.DELETE("/assignments/:id", hm.studentHandler.DeleteAssignment)
			student.GET("/assignments/:id/file", hm.studentHandler.DownloadFile)
		}

		// Professor routes - Professors only
		professor := authed.Group("/professor")
		professor.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleProfessor))
		{
			professor.GET("/dashboard", hm.professorHandler.Dashboard)
			professor.GET("/profile", hm.authHandler.GetProfile)
			professor.PUT("/profile", hm.authHandler.UpdateProfile)

			professor.GET("/assignments", hm.professorHandler.ListAssignments)
			professor.GET("/assignments/:id", hm.professorHandler.GetAssignment)
			professor.POST("/assignments/:id/decision", hm.professorHandler.Decide)
			professor.GET("/assignments/:id/file", hm.professorHandler.DownloadFile)
		}

		// Admin routes - Admins only
		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/users", hm.adminHandler.ListUsers)
			admin.POST("/users", hm.adminHandler.CreateUser)
			admin.GET("/users/:id", hm.adminHandler.GetUser)
			admin.PUT("/users/:id", hm.adminHandler.UpdateUser)
			admin.DELETE("/users/:id", hm.adminHandler.DeleteUser)

			admin.GET("/departments", hm.adminHandler.ListDepartments)
			admin.POST("/departments", hm.adminHandler.CreateDepartment)
			admin.PUT("/departments/:id", hm.adminHandler.UpdateDepartment)
			admin.DELETE("/departments/:id", hm.adminHandler.DeleteDepartment)

			admin.GET("/reports/users.xlsx", hm.adminHandler.UsersReport)
			admin.GET("/reports/assignments.xlsx", hm.adminHandler.AssignmentsReport)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "submission-service",
		})
	})
}
