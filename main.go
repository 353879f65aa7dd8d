package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/middleware"
	"github.com/feastly/ambassador_backend/routes"
	"github.com/feastly/ambassador_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (leaderboard cache; nil client disables caching)
	redisClient := config.ConnectRedis()
	defer config.CloseRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Prometheus counters
	ambassadorMetrics := metrics.NewAmbassadorMetrics()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Feastly Ambassador Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Register routes
	routes.RegisterAmbassadorRoutes(e, client, redisClient, wsHub, ambassadorMetrics)
	routes.RegisterAdminRoutes(e, client, wsHub, ambassadorMetrics)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
