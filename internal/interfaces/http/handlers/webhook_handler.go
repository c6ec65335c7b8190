package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/leadradar/lead-radar-api/internal/infrastructure/realtime"
	"github.com/leadradar/lead-radar-api/internal/infrastructure/webhook"
)

// WebhookHandler is both ends of the workflow boundary: outbound URL
// forwarding and the inbound result callbacks that get re-broadcast to
// live chat clients.
type WebhookHandler struct {
	gateway *webhook.Gateway
	hub     *realtime.Hub
}

func NewWebhookHandler(gateway *webhook.Gateway, hub *realtime.Hub) *WebhookHandler {
	return &WebhookHandler{gateway: gateway, hub: hub}
}

// ProcessURL extracts a video URL from the chat message and forwards it
// to the analysis workflow.
func (h *WebhookHandler) ProcessURL(c *fiber.Ctx) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil || body.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is required"})
	}

	url := webhook.ExtractURLFromMessage(body.Message)
	if url == "" {
		return c.JSON(fiber.Map{
			"success": true,
			"hasUrl":  false,
			"message": "No URL found in message",
		})
	}

	result := h.gateway.SendURLToWebhook(c.Context(), body.Message)

	message := fmt.Sprintf("URL detected but webhook failed for %s", platformOrUnknown(result.Platform))
	if result.Success {
		message = fmt.Sprintf("%s URL sent to webhook successfully", result.Platform)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"hasUrl":      true,
		"url":         result.URL,
		"platform":    result.Platform,
		"webhookSent": result.Success,
		"message":     message,
	})
}

// WebhookResponse is the plain callback endpoint: the workflow posts a
// response string (or a loose leads blob) and it is pushed to every
// connected client.
func (h *WebhookHandler) WebhookResponse(c *fiber.Ctx) error {
	var body struct {
		Response    string      `json:"response"`
		ThreadID    string      `json:"threadId"`
		Timestamp   string      `json:"timestamp"`
		MessageType string      `json:"messageType"`
		Leads       interface{} `json:"leads"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("❌ Webhook response error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook response"})
	}

	log.Printf("🎯 Webhook response received (threadId=%s)", body.ThreadID)

	message := body.Response
	if message == "" && body.Leads != nil {
		switch leads := body.Leads.(type) {
		case string:
			message = leads
		case []interface{}:
			message = fmt.Sprintf("Found %d potential leads from the video analysis.", len(leads))
		case map[string]interface{}:
			message = fmt.Sprintf("Found %d potential leads from the video analysis.", len(leads))
		}
	}

	if message != "" {
		event := realtime.AIResponse{
			Message:     message,
			ThreadID:    body.ThreadID,
			Timestamp:   body.Timestamp,
			MessageType: body.MessageType,
		}
		if event.Timestamp == "" {
			event.Timestamp = time.Now().UTC().Format(time.RFC3339)
		}
		if event.MessageType == "" {
			event.MessageType = "ai"
		}
		if body.Leads != nil {
			event.Data = &realtime.LeadsData{Leads: body.Leads}
		}
		h.hub.Broadcast(event)
		log.Printf("✅ Response sent to frontend via WebSocket")
	}

	return c.JSON(fiber.Map{"status": "received"})
}

// WebhookLeads is the structured callback endpoint. The `leads` field
// arrives in whatever shape the workflow felt like sending; it is
// normalized to a message plus optional structured leads and broadcast.
func (h *WebhookHandler) WebhookLeads(c *fiber.Ctx) error {
	var body struct {
		Leads interface{} `json:"leads"`
	}
	if err := c.BodyParser(&body); err != nil {
		// Make.com posts form-urlencoded; the leads value is a string then
		if leads := c.FormValue("leads"); leads != "" {
			body.Leads = leads
		} else {
			log.Printf("❌ Webhook processing error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to process webhook data",
			})
		}
	}

	log.Printf("🎯 Leads webhook received (%s)", c.Get(fiber.HeaderContentType))

	normalized := NormalizeLeadsPayload(body.Leads)

	event := realtime.AIResponse{
		Message:     normalized.Message,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		MessageType: "ai",
	}
	if normalized.Leads != nil {
		event.Data = &realtime.LeadsData{Leads: normalized.Leads}
	}
	h.hub.Broadcast(event)
	log.Printf("📤 Data sent to frontend via WebSocket")

	count := interface{}("processed")
	if arr, ok := normalized.Leads.([]interface{}); ok {
		count = len(arr)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Data parsed and sent successfully!",
		"count":   count,
	})
}

func platformOrUnknown(platform string) string {
	if platform == "" {
		return "unknown platform"
	}
	return platform
}
