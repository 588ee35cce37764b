package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tarpaulin-edu/course-service/internal/services"
	"github.com/tarpaulin-edu/course-service/internal/utils"
)

// HandlerManager owns all handlers and wires them onto the router.
type HandlerManager struct {
	userHandler    *UserHandler
	courseHandler  *CourseHandler
	avatarHandler  *AvatarHandler
	authMiddleware *OIDCAuthMiddleware
	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authMiddleware *OIDCAuthMiddleware,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:    NewUserHandler(serviceManager.Auth(), serviceManager.User(), logger),
		courseHandler:  NewCourseHandler(serviceManager.Course(), serviceManager.Enrollment(), serviceManager.Roster(), logger),
		avatarHandler:  NewAvatarHandler(serviceManager.Avatar(), logger),
		authMiddleware: authMiddleware,
		serviceManager: serviceManager,
	}
}

// SetupRoutes registers the full API surface.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "tarpaulin-course-service"})
	})
	router.GET("/health", hm.HealthCheck)

	// Courses are publicly listable and readable; no token required.
	router.GET("/courses", hm.courseHandler.ListCourses)
	router.GET("/courses/:id", hm.courseHandler.GetCourse)

	auth := hm.authMiddleware.AuthMiddleware()
	adminOnly := hm.authMiddleware.RequireRoleMiddleware()

	users := router.Group("/users")
	{
		users.POST("/login", hm.userHandler.Login)

		users.GET("", auth, adminOnly, hm.userHandler.ListUsers)
		users.GET("/:id", auth, hm.userHandler.GetUser)

		users.POST("/:id/avatar", auth, hm.avatarHandler.UploadAvatar)
		users.GET("/:id/avatar", auth, hm.avatarHandler.GetAvatar)
		users.DELETE("/:id/avatar", auth, hm.avatarHandler.DeleteAvatar)
	}

	courses := router.Group("/courses", auth)
	{
		courses.POST("", adminOnly, hm.courseHandler.CreateCourse)
		courses.PATCH("/:id", adminOnly, hm.courseHandler.UpdateCourse)
		courses.DELETE("/:id", adminOnly, hm.courseHandler.DeleteCourse)

		// Admin-or-instructor is enforced per course in the service.
		courses.GET("/:id/students", hm.courseHandler.GetEnrollment)
		courses.PATCH("/:id/students", hm.courseHandler.UpdateEnrollment)
		courses.GET("/:id/roster", hm.courseHandler.ExportRoster)
	}
}

// HealthCheck reports downstream dependency health.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		health["status"] = "unhealthy"
		health["error"] = err.Error()
	}
	c.JSON(status, health)
}
