package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/handlers"
	"github.com/straitwatch/backend/natsserver"
	"github.com/straitwatch/backend/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.Database); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	defer database.Close()

	handlers.SeedAdminUser()

	// Start embedded NATS server; the collector publishes detection events
	// here and the dashboard consumes them live.
	natsServer, err := natsserver.New(natsserver.Config{Port: cfg.NATS.Port})
	if err != nil {
		log.Fatalf("❌ Failed to start NATS server: %v", err)
	}
	defer natsServer.Shutdown()

	// Initialize event hub for WebSocket streaming
	eventHub, err := services.NewEventHub(natsServer.Conn())
	if err != nil {
		log.Fatalf("❌ Failed to start event hub: %v", err)
	}
	defer eventHub.Close()
	go eventHub.Run()
	handlers.SetEventHub(eventHub)
	log.Println("📡 Event hub initialized")

	// Response cache; degrades to pass-through when redis is down.
	cache := services.NewCacheService(cfg.Redis)
	defer cache.Close()
	handlers.Cache = cache

	// Setup Gin router
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// WebSocket route for the live event stream (outside /api group)
	router.GET("/ws/events", handlers.HandleEventsWebSocket)

	// API Routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", handlers.Login)

		api.GET("/stats", handlers.GetStats)
		api.GET("/crossings", handlers.GetCrossings)
		api.GET("/waiting", handlers.GetWaitingEvents)
		api.GET("/daily-stats", handlers.GetDailyStats)
		api.GET("/weather", handlers.GetWeather)

		vessels := api.Group("/vessels")
		{
			vessels.GET("/active", handlers.GetActiveShips)
			vessels.GET("/:mmsi/track", handlers.GetVesselTrack)
		}

		// Monitoring endpoints behind auth
		admin := api.Group("/admin", handlers.AuthMiddleware())
		{
			admin.GET("/events/stats", handlers.GetEventHubStats)
			admin.GET("/nats/stats", func(c *gin.Context) {
				c.JSON(200, natsServer.GetStats())
			})
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("🚀 StraitWatch API listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
