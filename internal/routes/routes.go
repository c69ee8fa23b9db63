// Package routes assembles the HTTP surface.
package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ems-api/internal/handlers"
	"github.com/yukikurage/ems-api/internal/middleware"
	"github.com/yukikurage/ems-api/internal/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Department   *handlers.DepartmentHandler
	Task         *handlers.TaskHandler
	Notification *handlers.NotificationHandler
}

type Options struct {
	Tokens          middleware.TokenParser
	Tasks           middleware.TaskLoader
	CORSOrigins     []string
	RateLimitPerMin int
	RateLimitBurst  int
}

// Setup registers every route on r
func Setup(r *gin.Engine, h Handlers, opts Options) {
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimiter(opts.RateLimitPerMin, opts.RateLimitBurst))
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "EMS API is running",
		})
	})

	requireAuth := middleware.RequireAuth(opts.Tokens)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", requireAuth, adminOnly, h.Auth.Register)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
			auth.PUT("/change-password", requireAuth, h.Auth.ChangePassword)
			auth.DELETE("/delete-account", requireAuth, h.Auth.DeleteAccount)
			auth.GET("/members", requireAuth, adminOnly, h.Auth.ListMembers)
			auth.DELETE("/members/:id", requireAuth, adminOnly, h.Auth.RemoveMember)
		}

		depts := api.Group("/departments")
		depts.Use(requireAuth)
		{
			depts.GET("", h.Department.ListDepartments)
			depts.POST("", adminOnly, h.Department.CreateDepartment)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", h.Task.ListTasks)
			tasks.POST("", adminOnly, h.Task.CreateTask)
			tasks.POST("/generate", adminOnly, h.Task.GenerateTasks)
			tasks.GET("/my-tasks", h.Task.ListMyTasks)
			tasks.GET("/upcoming", h.Task.ListUpcoming)
			tasks.GET("/:id", middleware.RequireTaskAccess(opts.Tasks), h.Task.GetTask)
			tasks.PATCH("/:id/status", h.Task.UpdateTaskStatus)
		}

		// Notification routes, always scoped to the caller
		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", h.Notification.ListNotifications)
			notifications.GET("/unread-count", h.Notification.UnreadCount)
			notifications.PATCH("/mark-all-read", h.Notification.MarkAllRead)
			notifications.PATCH("/:id/read", h.Notification.MarkRead)
			notifications.DELETE("/clear-read", h.Notification.ClearRead)
			notifications.DELETE("/:id", h.Notification.DeleteNotification)
		}
	}
}
