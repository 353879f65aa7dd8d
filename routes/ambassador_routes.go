// routes/ambassador_routes.go
package routes

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feastly/ambassador_backend/controllers"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/middleware"
	"github.com/feastly/ambassador_backend/services"
	"github.com/feastly/ambassador_backend/websocket"
)

// RegisterAmbassadorRoutes sets up all ambassador-facing routes
func RegisterAmbassadorRoutes(e *echo.Echo, db *mongo.Client, redisClient *redis.Client, hub *websocket.Hub, m *metrics.AmbassadorMetrics) {
	referralService := services.NewReferralService(db, m)
	paymentService := services.NewPaymentService()

	ambassadorController := controllers.NewAmbassadorController(db, referralService, m)
	referralController := controllers.NewReferralController(db)
	withdrawalController := controllers.NewWithdrawalController(db, hub, m)
	leaderboardController := controllers.NewLeaderboardController(db, redisClient)
	planController := controllers.NewPlanController(db, paymentService, m)

	ambassador := e.Group("/api/ambassador")

	// Public routes (no auth required)
	ambassador.POST("/signup", ambassadorController.Signup)
	ambassador.POST("/login", ambassadorController.Login)

	// Protected routes (require ambassador authentication)
	protected := ambassador.Group("")
	protected.Use(middleware.JWTMiddleware())

	protected.GET("/ledger", ambassadorController.GetLedger)
	protected.GET("/orders", ambassadorController.GetOrders)
	protected.GET("/dashboard", ambassadorController.GetDashboard)

	protected.GET("/referral", referralController.GetReferralData)
	protected.GET("/referral/qrcode", referralController.GetReferralQRCode)

	protected.POST("/withdrawals", withdrawalController.CreateWithdrawal)
	protected.GET("/withdrawals", withdrawalController.ListMyWithdrawals)

	protected.GET("/leaderboard", leaderboardController.GetLeaderboard)

	protected.GET("/plans", planController.ListPlans)
	protected.POST("/plans/:id/purchase", planController.CapturePlanPayment)

	// WebSocket endpoint for withdrawal decision notifications
	ws := e.Group("/api/ws")
	ws.Use(middleware.JWTMiddleware())
	ws.GET("", func(c echo.Context) error {
		userID, err := middleware.ExtractUserID(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Please provide valid credentials")
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID in token")
		}
		return websocket.HandleWebSocket(c, hub, objID)
	})
}
