package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/leadradar/lead-radar-api/internal/application/usecases"
	"github.com/leadradar/lead-radar-api/internal/interfaces/http/middleware"
	"gorm.io/datatypes"
)

type SessionHandler struct {
	sessions *usecases.SessionUseCase
}

func NewSessionHandler(sessions *usecases.SessionUseCase) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetCurrentSession returns the summary for the browser's own session.
// Polled by the chat UI, so it carries 30s cache headers and the
// middleware skips the activity bump for it.
func (h *SessionHandler) GetCurrentSession(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	// Browser-side caching; the etag middleware tags the body so
	// unchanged summaries revalidate as 304s
	c.Set(fiber.HeaderCacheControl, "public, max-age=30")

	summary, err := h.sessions.CalculateSessionSummary(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, usecases.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch session summary"})
	}

	return c.JSON(fiber.Map{
		"session": fiber.Map{"id": sessionID},
		"summary": summary,
	})
}

// GetCurrentSessionStats serves the polling loop from the fast tier.
func (h *SessionHandler) GetCurrentSessionStats(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	stats, err := h.sessions.GetFastSessionStats(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, usecases.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch session stats"})
	}

	return c.JSON(stats)
}

// GetCurrentSessionExport returns the full session dataset.
func (h *SessionHandler) GetCurrentSessionExport(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	data, err := h.sessions.GetSessionExportData(c.Context(), sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch session data"})
	}
	if data == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}

	return c.JSON(data)
}

// UpdateCurrentSession merges the user's display name into the session
// metadata.
func (h *SessionHandler) UpdateCurrentSession(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	var body struct {
		UserName string `json:"userName"`
	}
	if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.UserName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid userName is required"})
	}

	userName := strings.TrimSpace(body.UserName)
	if _, err := h.sessions.UpdateSessionMetadata(c.Context(), sessionID, map[string]interface{}{"userName": userName}); err != nil {
		if errors.Is(err, usecases.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update session"})
	}

	return c.JSON(fiber.Map{"success": true, "userName": userName})
}

// CreateSession is the admin entry point for opening a session outside
// the cookie flow.
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var body struct {
		UserEmail *string           `json:"userEmail"`
		Metadata  datatypes.JSONMap `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.sessions.CreateSession(c.Context(), body.UserEmail, body.Metadata)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionHandler) GetSessionByID(c *fiber.Ctx) error {
	session, err := h.sessions.GetSession(c.Context(), c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch session"})
	}
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}
	return c.JSON(session)
}

func (h *SessionHandler) GetSessionSummary(c *fiber.Ctx) error {
	summary, err := h.sessions.CalculateSessionSummary(c.Context(), c.Params("sessionId"))
	if err != nil {
		if errors.Is(err, usecases.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to calculate session summary"})
	}
	return c.JSON(summary)
}

func (h *SessionHandler) GetSessionExportData(c *fiber.Ctx) error {
	data, err := h.sessions.GetSessionExportData(c.Context(), c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch session export data"})
	}
	if data == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found or no data available"})
	}
	return c.JSON(data)
}

// SaveAnalysis attaches one workflow result to a session.
func (h *SessionHandler) SaveAnalysis(c *fiber.Ctx) error {
	var body struct {
		SessionID string `json:"sessionId"`
		usecases.AnalysisInput
	}
	if err := c.BodyParser(&body); err != nil || body.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sessionId is required"})
	}

	analysis, err := h.sessions.SaveAnalysisToSession(c.Context(), body.SessionID, body.AnalysisInput)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save analysis"})
	}
	return c.Status(fiber.StatusCreated).JSON(analysis)
}

// CreateExport opens an export record without running the export.
func (h *SessionHandler) CreateExport(c *fiber.Ctx) error {
	var body struct {
		SessionID   string            `json:"sessionId"`
		Type        string            `json:"type"`
		Destination string            `json:"destination"`
		Metadata    datatypes.JSONMap `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil || body.SessionID == "" || body.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sessionId and type are required"})
	}

	export, err := h.sessions.CreateExport(c.Context(), body.SessionID, body.Type, body.Destination, body.Metadata)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create export"})
	}
	return c.Status(fiber.StatusCreated).JSON(export)
}

// AssociateLeads bulk re-parents leads onto a session.
func (h *SessionHandler) AssociateLeads(c *fiber.Ctx) error {
	var body struct {
		SessionID string `json:"sessionId"`
		LeadIDs   []int  `json:"leadIds"`
	}
	if err := c.BodyParser(&body); err != nil || body.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sessionId is required"})
	}

	count, err := h.sessions.AssociateLeadsWithSession(c.Context(), body.SessionID, body.LeadIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to associate leads"})
	}
	return c.JSON(fiber.Map{"success": true, "associatedCount": count})
}

// ExpireSession forces a session out of the active pool ahead of the
// background sweep.
func (h *SessionHandler) ExpireSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if err := h.sessions.ExpireSession(c.Context(), sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to expire session"})
	}
	return c.JSON(fiber.Map{"success": true, "sessionId": sessionID})
}

// GetSessionSummaries returns summaries for the sessions named in the
// comma-separated ids query param, or every session when it is absent.
func (h *SessionHandler) GetSessionSummaries(c *fiber.Ctx) error {
	var ids []string
	if raw := c.Query("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	summaries, err := h.sessions.GetSessionSummaries(c.Context(), ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute session summaries"})
	}
	return c.JSON(summaries)
}

func (h *SessionHandler) GetActiveSessions(c *fiber.Ctx) error {
	sessions, err := h.sessions.GetActiveSessions(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch active sessions"})
	}
	return c.JSON(sessions)
}

// Cleanup runs the two-phase old-session sweep on demand.
func (h *SessionHandler) Cleanup(c *fiber.Ctx) error {
	var body struct {
		HoursOld int `json:"hoursOld"`
	}
	// Body is optional; default window is 48 hours
	_ = c.BodyParser(&body)

	result, err := h.sessions.CleanupOldSessions(c.Context(), body.HoursOld)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cleanup sessions"})
	}
	return c.JSON(result)
}
