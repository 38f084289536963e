package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/learnfinity/learnfinity-backend/internal/handlers"
	"github.com/learnfinity/learnfinity-backend/internal/middleware"
	"github.com/learnfinity/learnfinity-backend/internal/utils"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	UserHandler       *handlers.UserHandler
	EmployeeHandler   *handlers.EmployeeHandler
	CourseHandler     *handlers.CourseHandler
	EnrollmentHandler *handlers.EnrollmentHandler
	MappingHandler    *handlers.MappingHandler
	RealtimeHandler   *handlers.RealtimeHandler

	AvatarDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("learnfinity"))

	origins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:80,http://localhost:3000,http://localhost:5174", nil), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	if cfg.AvatarDir != "" {
		router.Static("/static/avatars", cfg.AvatarDir)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// SSE
	protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.POST("/user/avatar", cfg.UserHandler.UploadAvatar)
	// Employee self-service
	protected.GET("/employee/me", cfg.EmployeeHandler.GetMe)
	protected.GET("/employees/:id", cfg.EmployeeHandler.Get)
	protected.GET("/employees/:id/learning-path", cfg.EmployeeHandler.GetLearningPath)
	protected.GET("/employees/:id/enrollments", cfg.EnrollmentHandler.ListForEmployee)
	// Courses (catalog readable by any authenticated user)
	protected.GET("/courses", cfg.CourseHandler.List)
	protected.GET("/courses/:id", cfg.CourseHandler.Get)
	// Enrollments
	protected.GET("/enrollments", cfg.EnrollmentHandler.ListMine)
	protected.GET("/enrollments/:id", cfg.EnrollmentHandler.GetStatus)
	protected.GET("/enrollments/:id/content", cfg.EnrollmentHandler.GetContent)
	protected.POST("/enrollments/:id/regenerate", cfg.EnrollmentHandler.Regenerate)

	// ===============
	// || HR only   ||
	// ===============
	hr := protected.Group("/")
	hr.Use(cfg.AuthMiddleware.RequireHRAdmin())
	hr.POST("/employees", cfg.EmployeeHandler.Create)
	hr.GET("/employees", cfg.EmployeeHandler.List)
	hr.PATCH("/employees/:id", cfg.EmployeeHandler.Update)
	hr.DELETE("/employees/:id", cfg.EmployeeHandler.Delete)
	hr.POST("/employees/:id/link-user", cfg.EmployeeHandler.LinkUser)
	hr.POST("/courses", cfg.CourseHandler.Create)
	hr.PATCH("/courses/:id", cfg.CourseHandler.Update)
	hr.DELETE("/courses/:id", cfg.CourseHandler.Delete)
	hr.POST("/enrollments", cfg.EnrollmentHandler.Assign)
	hr.PATCH("/enrollments/:id/course", cfg.EnrollmentHandler.ChangeCourse)
	hr.POST("/mappings", cfg.MappingHandler.Create)
	hr.GET("/mappings", cfg.MappingHandler.List)
	hr.DELETE("/mappings/:id", cfg.MappingHandler.Delete)

	return router
}
