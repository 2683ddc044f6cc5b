package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookreview-backend/internal/shared/middleware"
	"bookreview-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)

	router.GET("/health", healthCheckHandler(c))
	if c.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))
	}

	authenticate := middleware.Authenticate(c.JWTManager, c.UserService)

	v1 := router.Group("/api/v1")
	{
		setupBookRoutes(v1, c, authenticate)
		setupReviewRoutes(v1, c, authenticate)
		setupUserRoutes(v1, c, authenticate)
		setupAdminRoutes(v1, c, authenticate)
	}

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container, authenticate gin.HandlerFunc) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/genre/:genre", c.BookHandler.ListBooksByGenre)
		books.GET("/:id", c.BookHandler.GetBook)
	}

	admin := v1.Group("/books")
	admin.Use(authenticate, middleware.RequireAdmin())
	{
		admin.POST("", c.BookHandler.CreateBook)
		admin.PATCH("/:id", c.BookHandler.UpdateBook)
		admin.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container, authenticate gin.HandlerFunc) {
	v1.GET("/books/:id/reviews", c.ReviewHandler.ListBookReviews)

	reviews := v1.Group("/books/:id/reviews")
	reviews.Use(authenticate)
	{
		reviews.POST("", c.ReviewHandler.CreateReview)
		reviews.PATCH("/:reviewId", c.ReviewHandler.UpdateReview)
		reviews.DELETE("/:reviewId", c.ReviewHandler.DeleteReview)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container, authenticate gin.HandlerFunc) {
	users := v1.Group("/users")
	{
		// Registration runs before a profile exists, so only the token is checked.
		users.PUT("/me", middleware.AuthenticateToken(c.JWTManager), c.UserHandler.PutMe)

		users.GET("/me", authenticate, c.UserHandler.GetMe)
		users.PATCH("/me", authenticate, c.UserHandler.PatchMe)
		users.GET("/me/reviews", authenticate, c.ReviewHandler.ListMyReviews)

		users.GET("/:uid/reviews", c.ReviewHandler.ListUserReviews)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container, authenticate gin.HandlerFunc) {
	admin := v1.Group("/admin")
	admin.Use(authenticate, middleware.RequireAdmin())
	{
		admin.PATCH("/users/:uid/role", c.UserHandler.AdminUpdateRole)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil {
			dbStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "error"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = "error"
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		// Redis is advisory; only the database decides readiness.
		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
