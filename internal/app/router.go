// internal/app/router.go
package app

import (
	authHandler "crm-insight/internal/handlers/auth"
	dashboardHandler "crm-insight/internal/handlers/dashboard"
	"crm-insight/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	DashboardHandler *dashboardHandler.DashboardHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": version})
	})

	// ==================== Operator ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.POST("/logout", h.AuthHandler.Logout)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.OperatorOnly()...)
	{
		customers.GET("", h.DashboardHandler.ListCustomers)
		customers.GET("/:id/profile", h.DashboardHandler.GetProfile)

		customers.GET("/:id/support-history", h.DashboardHandler.GetSupportHistory)
		customers.POST("/:id/support-history", h.DashboardHandler.AddSupportRecord)
		customers.GET("/:id/purchase-history", h.DashboardHandler.GetPurchaseHistory)
		customers.POST("/:id/purchase-history", h.DashboardHandler.AddPurchaseRecord)
		customers.GET("/:id/social-media-history", h.DashboardHandler.GetSocialMediaHistory)
		customers.POST("/:id/social-media-history", h.DashboardHandler.AddSocialMediaRecord)

		customers.GET("/:id/insights", h.DashboardHandler.GetInsights)
		customers.GET("/:id/insights/history", h.DashboardHandler.ListInsightHistory)
		customers.GET("/:id/insights/latest", h.DashboardHandler.LatestInsight)

		customers.POST("/:id/run-ai", h.DashboardHandler.RunAI)
		customers.GET("/:id/ai-runs", h.DashboardHandler.ListAIRuns)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin/customers")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.DELETE("/:id/ai-run-limit", h.DashboardHandler.ResetAIRunLimit)
	}

	logger.Info("routes registered", zap.Int("count", len(r.Routes())))
}
