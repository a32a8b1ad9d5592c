package routes

import (
	"taskboard/internal/controller"
	"taskboard/internal/middleware"
	"taskboard/internal/service"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// Deps are the services the router exposes.
type Deps struct {
	Auth        *service.AuthService
	Todos       *service.TodoService
	CORSOrigins string
}

func Router(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.RequestLogger())
	if d.CORSOrigins != "" {
		router.Use(middleware.CORS(d.CORSOrigins))
	}

	// Health for load balancers and K8s probes
	router.GET("/health", controller.Health)

	// Public: no auth
	authHandlers := controller.NewAuth(d.Auth)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandlers.Register)
		authGroup.POST("/login", authHandlers.Login)
		authGroup.POST("/logout", authHandlers.Logout)
		authGroup.POST("/forgot-password", authHandlers.ForgotPassword)
		authGroup.POST("/reset-password", authHandlers.ResetPassword)
	}

	// Protected: session token required
	todoHandlers := controller.NewTodos(d.Todos)
	api := router.Group("/api/todos")
	api.Use(middleware.AuthMiddleware(d.Auth))
	{
		api.GET("", todoHandlers.List)
		api.POST("", todoHandlers.Create)
		api.GET("/activity", todoHandlers.Activity)
		api.PATCH("/:id", todoHandlers.Update)
		api.DELETE("/:id", todoHandlers.Delete)
	}

	return router
}
