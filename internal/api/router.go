package api

import (
	"github.com/gin-gonic/gin"

	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/handler"
	"github.com/apnadera/backend-go/internal/middleware"
)

func SetupRouter(
	authHandler *handler.AuthHandler,
	propertyHandler *handler.PropertyHandler,
	userHandler *handler.UserHandler,
	contactHandler *handler.ContactHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter middleware.RateLimiter,
) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(rateLimiter.Middleware())

	// Public routes
	r.GET("/api/v1/health", healthHandler.Check)

	// Auth routes (Public)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Property routes. Listing and search are public; single-property
	// fetches carry optional auth so owners can see their inactive
	// listings. /search must be registered before /:id.
	properties := r.Group("/api/v1/properties")
	{
		properties.GET("", propertyHandler.List)
		properties.GET("/search", propertyHandler.Search)
		properties.GET("/:id", authMiddleware.OptionalAuth(), propertyHandler.Get)

		protected := properties.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.POST("", authMiddleware.RequireRoles(models.RoleSeller, models.RoleAgent, models.RoleAdmin), propertyHandler.Create)
			protected.PUT("/:id", propertyHandler.Update)
			protected.DELETE("/:id", propertyHandler.Delete)
			protected.POST("/:id/favorite", propertyHandler.ToggleFavorite)
		}
	}

	// Inquiry route (Public)
	r.POST("/api/v1/contact", contactHandler.SendInquiry)

	// Protected account routes. Fixed paths register before the admin
	// /:id routes so gin matches them first.
	users := r.Group("/api/v1/users")
	users.Use(authMiddleware.RequireAuth())
	{
		users.GET("/properties", userHandler.MyProperties)
		users.GET("/favorites", userHandler.MyFavorites)
		users.GET("/stats", userHandler.MyStats)

		admin := users.Group("")
		admin.Use(authMiddleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("", userHandler.ListUsers)
			admin.GET("/:id", userHandler.GetUser)
			admin.PUT("/:id", userHandler.UpdateUser)
			admin.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	// Current-user routes
	me := r.Group("/api/v1/auth")
	me.Use(authMiddleware.RequireAuth())
	{
		me.GET("/me", authHandler.Me)
		me.PUT("/profile", authHandler.UpdateProfile)
	}

	return r
}
