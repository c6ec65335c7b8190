package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/websocket/v2"
	"github.com/leadradar/lead-radar-api/internal/application/usecases"
	"github.com/leadradar/lead-radar-api/internal/domain/repositories"
	"github.com/leadradar/lead-radar-api/internal/infrastructure/cache"
	"github.com/leadradar/lead-radar-api/internal/infrastructure/realtime"
	webhookgw "github.com/leadradar/lead-radar-api/internal/infrastructure/webhook"
	"github.com/leadradar/lead-radar-api/internal/interfaces/http/handlers"
	"github.com/leadradar/lead-radar-api/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *realtime.Hub) *usecases.SessionUseCase {
	// Add performance middleware
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Add ETag support for efficient caching
	app.Use(etag.New())

	app.Use(middleware.PerformanceLogger())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"version":   "1.0.0",
			"wsClients": hub.ClientCount(),
		})
	})

	// Repositories
	sessionRepo := repositories.NewSessionRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	videoAnalysisRepo := repositories.NewVideoAnalysisRepository(db)
	exportRepo := repositories.NewExportRepository(db)

	// Use Cases
	sessionUseCase := usecases.NewSessionUseCase(sessionRepo, leadRepo, analysisRepo, exportRepo, cache.NewSessionTiers())
	leadUseCase := usecases.NewLeadUseCase(leadRepo)
	analysisUseCase := usecases.NewAnalysisUseCase(videoAnalysisRepo, analysisRepo)
	exportUseCase := usecases.NewExportUseCase(sessionUseCase, leadRepo, os.Getenv("SHEETS_WEBHOOK_URL"))

	// Webhook gateway to the external analysis workflow
	gateway := webhookgw.NewGateway(os.Getenv("N8N_WEBHOOK_URL"))

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionUseCase)
	leadHandler := handlers.NewLeadHandler(leadUseCase)
	videoAnalysisHandler := handlers.NewVideoAnalysisHandler(analysisUseCase, leadUseCase)
	exportHandler := handlers.NewExportHandler(exportUseCase)
	webhookHandler := handlers.NewWebhookHandler(gateway, hub)

	// The session cookie middleware guards every session-scoped surface.
	// /api/session-service is the admin surface and stays outside it.
	sessionMiddleware := middleware.NewSessionMiddleware(sessionUseCase)
	app.Use("/api/chat", sessionMiddleware)
	app.Use("/api/webhook", sessionMiddleware)
	app.Use("/api/export", sessionMiddleware)

	// Current-session endpoints (cookie scoped)
	app.Get("/api/session", sessionMiddleware, sessionHandler.GetCurrentSession)
	app.Get("/api/session/stats", sessionMiddleware, sessionHandler.GetCurrentSessionStats)
	app.Get("/api/session/export", sessionMiddleware, sessionHandler.GetCurrentSessionExport)
	app.Post("/api/session/update", sessionMiddleware, sessionHandler.UpdateCurrentSession)

	// Exports (destructive on success)
	app.Get("/api/export/csv", exportHandler.ExportCSV)
	app.Post("/api/export/sheets", exportHandler.ExportSheets)

	// Outbound forwarding to the workflow
	app.Post("/api/process-url", webhookHandler.ProcessURL)

	// Inbound asynchronous callbacks from the workflow
	app.Post("/webhook/response", webhookHandler.WebhookResponse)
	app.Post("/api/webhook/leads", webhookHandler.WebhookLeads)

	// Video analyses
	app.Get("/api/video-analyses", videoAnalysisHandler.GetVideoAnalyses)
	app.Post("/api/video-analyses", videoAnalysisHandler.CreateVideoAnalysis)
	app.Get("/api/video-analyses/:id", videoAnalysisHandler.GetVideoAnalysis)
	app.Patch("/api/video-analyses/:id", videoAnalysisHandler.UpdateVideoAnalysis)
	app.Get("/api/video-analyses/:id/leads", videoAnalysisHandler.GetVideoAnalysisLeads)

	// Leads
	app.Get("/api/leads", leadHandler.GetLeads)
	app.Post("/api/leads", leadHandler.CreateLead)
	app.Post("/api/leads/batch", leadHandler.CreateLeadsBatch)

	// Session-linked AI analysis records
	app.Get("/api/analyses", videoAnalysisHandler.GetAnalyses)

	// Session service admin surface
	service := app.Group("/api/session-service")
	service.Post("/create", sessionHandler.CreateSession)
	service.Post("/analysis", sessionHandler.SaveAnalysis)
	service.Post("/export", sessionHandler.CreateExport)
	service.Post("/associate-leads", sessionHandler.AssociateLeads)
	service.Post("/cleanup", sessionHandler.Cleanup)
	service.Get("/active-sessions", sessionHandler.GetActiveSessions)
	service.Get("/summaries", sessionHandler.GetSessionSummaries)
	service.Post("/:sessionId/expire", sessionHandler.ExpireSession)
	service.Get("/:sessionId/summary", sessionHandler.GetSessionSummary)
	service.Get("/:sessionId/export", sessionHandler.GetSessionExportData)
	service.Get("/:sessionId", sessionHandler.GetSessionByID)

	// Realtime channel for ai-response events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(hub.Handler))

	return sessionUseCase
}
