package main

import (
	"log"
	"mime"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/profiradce/profiradce_backend/config"
	"github.com/profiradce/profiradce_backend/controllers"
	"github.com/profiradce/profiradce_backend/middleware"
	"github.com/profiradce/profiradce_backend/repositories"
	"github.com/profiradce/profiradce_backend/routes"
	"github.com/profiradce/profiradce_backend/services"
	"github.com/profiradce/profiradce_backend/utils"
	"github.com/profiradce/profiradce_backend/websocket"
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
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Ensure correct MIME type for SVG files
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	// Connect to Redis (optional; refresh tokens and cross-instance
	// invalidation degrade gracefully without it)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub for dashboard cache invalidation
	wsHub := websocket.NewHub(redisClient)
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiters
	rateLimiter := middleware.NewRateLimiter()
	contactLimiter := middleware.NewSlidingWindow(3, 60*time.Second)

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"profiradce.cz", "www.profiradce.cz", "profiradce.sk"},
		AllowInlineJS:  false,
		AllowEval:      false,
	}))
	e.Use(middleware.ActivityTracker(client))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "ProfiRadce Backend is running",
			"version": "1.0",
		})
	})

	// Initialize services
	paymentService := services.NewPaymentService()
	mailService := services.NewMailService()

	// Initialize controllers
	authController := controllers.NewAuthController(client, redisClient)
	dealRepo := repositories.NewDealRepository(client)
	dealController := controllers.NewDealController(client, dealRepo, wsHub)
	commissionController := controllers.NewCommissionController(client, paymentService, wsHub)
	contactController := controllers.NewContactController(client, contactLimiter, mailService)
	specialistController := controllers.NewSpecialistController(client)
	eventController := controllers.NewEventController(client)
	courseController := controllers.NewCourseController(client)

	routes.SetupRoutes(e, client, wsHub, routes.Controllers{
		Auth:       authController,
		Deal:       dealController,
		Commission: commissionController,
		Contact:    contactController,
		Specialist: specialistController,
		Event:      eventController,
		Course:     courseController,
	})

	// Background housekeeping
	go middleware.CleanupBlacklist()
	go func() {
		for {
			middleware.MarkInactiveUsers(client, 30*time.Minute)
			time.Sleep(5 * time.Minute)
		}
	}()

	// Ensure uploads directories exist
	if err := utils.InitializeStorage(); err != nil {
		log.Printf("Warning: failed to initialize storage: %v", err)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
