package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/leadradar/lead-radar-api/internal/application/usecases"
	"github.com/leadradar/lead-radar-api/internal/domain/entities"
)

type VideoAnalysisHandler struct {
	analyses *usecases.AnalysisUseCase
	leads    *usecases.LeadUseCase
}

func NewVideoAnalysisHandler(analyses *usecases.AnalysisUseCase, leads *usecases.LeadUseCase) *VideoAnalysisHandler {
	return &VideoAnalysisHandler{analyses: analyses, leads: leads}
}

func (h *VideoAnalysisHandler) GetVideoAnalyses(c *fiber.Ctx) error {
	analyses, err := h.analyses.GetVideoAnalyses(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch video analyses"})
	}
	return c.JSON(analyses)
}

// GetAnalyses lists the session-linked AI analysis records, optionally
// filtered by the sessionId query param.
func (h *VideoAnalysisHandler) GetAnalyses(c *fiber.Ctx) error {
	if sessionID := c.Query("sessionId"); sessionID != "" {
		analyses, err := h.analyses.GetAnalysesBySession(c.Context(), sessionID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch analyses"})
		}
		return c.JSON(analyses)
	}

	analyses, err := h.analyses.GetAnalyses(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch analyses"})
	}
	return c.JSON(analyses)
}

func (h *VideoAnalysisHandler) GetVideoAnalysis(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid 'id' parameter"})
	}

	analysis, err := h.analyses.GetVideoAnalysis(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch video analysis"})
	}
	if analysis == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Video analysis not found"})
	}
	return c.JSON(analysis)
}

func (h *VideoAnalysisHandler) CreateVideoAnalysis(c *fiber.Ctx) error {
	var analysis entities.VideoAnalysis
	if err := c.BodyParser(&analysis); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid video analysis data", "details": err.Error()})
	}

	created, err := h.analyses.CreateVideoAnalysis(c.Context(), &analysis)
	if err != nil {
		if errors.Is(err, usecases.ErrInvalidVideoAnalysis) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid video analysis data", "details": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create video analysis"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateVideoAnalysis applies partial updates, e.g. the lead count once
// results arrive.
func (h *VideoAnalysisHandler) UpdateVideoAnalysis(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid 'id' parameter"})
	}

	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid update payload"})
	}

	analysis, err := h.analyses.UpdateVideoAnalysis(c.Context(), id, updates)
	if err != nil {
		if errors.Is(err, usecases.ErrAnalysisNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Video analysis not found"})
		}
		if errors.Is(err, usecases.ErrInvalidVideoAnalysis) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid update payload", "details": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update video analysis"})
	}
	return c.JSON(analysis)
}

func (h *VideoAnalysisHandler) GetVideoAnalysisLeads(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid 'id' parameter"})
	}

	leads, err := h.leads.GetLeadsByVideoAnalysis(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch leads for video analysis"})
	}
	return c.JSON(leads)
}
