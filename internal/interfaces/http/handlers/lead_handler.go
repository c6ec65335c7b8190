package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/leadradar/lead-radar-api/internal/application/usecases"
	"github.com/leadradar/lead-radar-api/internal/domain/entities"
)

type LeadHandler struct {
	leads *usecases.LeadUseCase
}

func NewLeadHandler(leads *usecases.LeadUseCase) *LeadHandler {
	return &LeadHandler{leads: leads}
}

func (h *LeadHandler) GetLeads(c *fiber.Ctx) error {
	leads, err := h.leads.GetLeads(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch leads"})
	}
	return c.JSON(leads)
}

// CreateLead stores a lead coming from the workflow or the UI. leadId
// is generated when omitted; confidenceScore must stay inside [0,100].
func (h *LeadHandler) CreateLead(c *fiber.Ctx) error {
	var lead entities.Lead
	if err := c.BodyParser(&lead); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lead data", "details": err.Error()})
	}

	created, err := h.leads.CreateLead(c.Context(), &lead)
	if err != nil {
		if errors.Is(err, usecases.ErrInvalidLead) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lead data", "details": err.Error()})
		}
		log.Printf("❌ Error creating lead: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create lead"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// CreateLeadsBatch stores a whole lead array in one insert. Rejected as
// a unit when any entry fails validation.
func (h *LeadHandler) CreateLeadsBatch(c *fiber.Ctx) error {
	var leads []entities.Lead
	if err := c.BodyParser(&leads); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid leads payload", "details": err.Error()})
	}

	created, err := h.leads.CreateLeads(c.Context(), leads)
	if err != nil {
		if errors.Is(err, usecases.ErrInvalidLead) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lead data", "details": err.Error()})
		}
		log.Printf("❌ Error creating leads batch: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create leads"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"count": len(created), "leads": created})
}
