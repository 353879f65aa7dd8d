// routes/admin_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feastly/ambassador_backend/controllers"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/middleware"
	"github.com/feastly/ambassador_backend/services"
	"github.com/feastly/ambassador_backend/websocket"
)

// RegisterAdminRoutes sets up all admin-related routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub, m *metrics.AmbassadorMetrics) {
	adminController := controllers.NewAdminController(db, m)
	withdrawalController := controllers.NewWithdrawalController(db, hub, m)
	planController := controllers.NewPlanController(db, services.NewPaymentService(), m)

	admin := e.Group("/api/admin")

	// Public routes (no auth required)
	admin.POST("/login", adminController.AdminLogin)

	// Protected routes (require admin authentication)
	protected := admin.Group("")
	protected.Use(middleware.JWTMiddleware())
	protected.Use(middleware.AdminOnly())

	// Withdrawal queue
	protected.GET("/withdrawals", withdrawalController.ListPendingWithdrawals)
	protected.PUT("/withdrawals/:id", withdrawalController.DecideWithdrawal)

	// Commission attribution (called per delivered order)
	protected.POST("/commissions", adminController.RecordOrderCommission)

	// Referral bonus configuration
	protected.PUT("/bonus-amounts", adminController.SetBonusAmount)

	// Link a referred platform user to an ambassador
	protected.POST("/referred-users", adminController.LinkReferredUser)

	// Plan management
	protected.POST("/plans", planController.CreatePlan)
}
