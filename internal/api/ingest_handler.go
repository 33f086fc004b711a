package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"vigil-go/internal/domain"
	"vigil-go/internal/ingest"
)

// IngestHandler handles HTTP requests for activity event ingestion.
type IngestHandler struct {
	service *ingest.Service
	logger  *slog.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(service *ingest.Service, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		service: service,
		logger:  logger,
	}
}

// IngestEvent handles POST /v1/events
// Accepts a platform activity event for asynchronous aggregation.
func (h *IngestHandler) IngestEvent(c *fiber.Ctx) error {
	var event domain.ActivityEvent
	if err := c.BodyParser(&event); err != nil {
		h.logger.Debug("failed to parse request body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	if err := event.Validate(); err != nil {
		h.logger.Debug("validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	if err := h.service.IngestEvent(c.Context(), &event); err != nil {
		h.logger.Error("failed to ingest activity event", "error", err)
		return InternalError(c, "failed to ingest event")
	}

	return Accepted(c, map[string]string{"status": "accepted"})
}
