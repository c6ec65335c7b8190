package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/leadradar/lead-radar-api/internal/application/usecases"
	"github.com/leadradar/lead-radar-api/internal/interfaces/http/middleware"
)

type ExportHandler struct {
	exports *usecases.ExportUseCase
}

func NewExportHandler(exports *usecases.ExportUseCase) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportCSV streams the session's leads as a CSV attachment. The export
// consumes the leads: a second download returns the "no leads" body.
func (h *ExportHandler) ExportCSV(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	result, err := h.exports.ExportCSV(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, usecases.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found or no data to export"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate CSV export"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, result.Filename))
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(result.Content)))
	return c.Send(result.Content)
}

// ExportSheets pushes the session's leads to the Google Sheets webhook.
// Destructive on success only; a failed push keeps the leads for retry.
func (h *ExportHandler) ExportSheets(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || !strings.Contains(body.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email address is required for Google Sheets access"})
	}

	result, err := h.exports.ExportToSheets(c.Context(), sessionID, body.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecases.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found or no data to export"})
		case errors.Is(err, usecases.ErrSheetsWebhookFailed):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to send data to Google Sheets",
				"details": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export to Google Sheets"})
		}
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Export sent to Google Sheets successfully",
		"exportId": result.ExportID,
		"email":    result.Email,
	})
}
