package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/leadradar/lead-radar-api/internal/infrastructure/database"
	"github.com/leadradar/lead-radar-api/internal/infrastructure/realtime"
	"github.com/leadradar/lead-radar-api/internal/interfaces/http/middleware"
	"github.com/leadradar/lead-radar-api/internal/interfaces/http/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system environment variables")
	}

	// Initialize database
	db, err := database.SetupDatabase()
	if err != nil {
		log.Fatalf("❌ Error setting up database: %v", err)
	}

	// Realtime channel for analysis results
	hub := realtime.NewHub()
	go hub.Run()

	// Configure Fiber for better performance
	app := fiber.New(fiber.Config{
		Concurrency: 256 * 1024,
		BodyLimit:   10 * 1024 * 1024, // 10MB
		ReadTimeout: 5 * time.Second,
		// Outbound webhook calls happen inside export requests
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	// Setup middleware
	middleware.SetupMiddlewares(app)

	// Setup routes
	sessions := routes.SetupRoutes(app, db, hub)

	// Periodic two-phase session sweep: expire idle sessions, purge the
	// long-expired ones
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			result, err := sessions.CleanupOldSessions(context.Background(), 48)
			if err != nil {
				log.Printf("❌ Session cleanup failed: %v", err)
				continue
			}
			log.Printf("🧹 Session cleanup: %d expired, %d deleted", result.ExpiredCount, result.DeletedCount)
		}
	}()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server is running on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
