package auth

import (
	"github.com/gin-gonic/gin"
)

// Router handles auth-related routes
type Router struct {
	controller   *Controller
	auth         gin.HandlerFunc
	requireAdmin gin.HandlerFunc
}

// NewRouter creates a new auth router
func NewRouter(controller *Controller, auth, requireAdmin gin.HandlerFunc) *Router {
	return &Router{
		controller:   controller,
		auth:         auth,
		requireAdmin: requireAdmin,
	}
}

// SetupRoutes registers all auth routes
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		// Public routes (no authentication required)
		auth.POST("/register", authRouter.controller.Register)
		auth.POST("/login", authRouter.controller.Login)
		auth.POST("/refresh", authRouter.controller.RefreshToken)
		auth.POST("/logout", authRouter.controller.Logout)

		// Protected routes (authentication required)
		protected := auth.Group("")
		protected.Use(authRouter.auth)
		{
			protected.PUT("/change-password", authRouter.controller.ChangePassword)
			protected.GET("/me", authRouter.controller.GetMe)
		}
	}

	admin := rg.Group("/admin/users")
	admin.Use(authRouter.auth, authRouter.requireAdmin)
	{
		admin.POST("", authRouter.controller.CreateUser) // POST /api/v1/admin/users
	}
}
