package api

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"vigil-go/internal/condition"
	"vigil-go/internal/domain"
	"vigil-go/internal/store"
)

// AlertHandler handles HTTP requests for alert definition operations.
type AlertHandler struct {
	repo      store.AlertRepository
	evaluator *condition.Evaluator
	logger    *slog.Logger
}

// NewAlertHandler creates a new alert definition handler.
func NewAlertHandler(repo store.AlertRepository, evaluator *condition.Evaluator, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		repo:      repo,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Create handles POST /v1/alerts
// Creates a new alert definition. The condition is validated against the
// variable catalog before anything is stored.
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var req domain.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse request body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	def := req.ToDefinition(time.Now().UTC())
	if err := def.Validate(); err != nil {
		h.logger.Debug("validation failed", "error", err)
		return ValidationError(c, err.Error())
	}
	if err := h.evaluator.Validate(def.Condition); err != nil {
		h.logger.Debug("condition validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	if err := h.repo.Create(c.Context(), def); err != nil {
		h.logger.Error("failed to create alert definition", "error", err)
		return InternalError(c, "failed to create alert definition")
	}

	h.logger.Info("created alert definition", "id", def.ID, "name", def.Name)
	return Created(c, def)
}

// List handles GET /v1/alerts
// Returns definitions, optionally filtered by channel and active flag.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter := domain.DefinitionFilter{
		Channel: domain.ChannelKind(c.Query("channel")),
		Limit:   c.QueryInt("limit"),
		Offset:  c.QueryInt("offset"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return BadRequest(c, "active must be true or false")
		}
		filter.Active = &active
	}

	defs, err := h.repo.List(c.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list alert definitions", "error", err)
		return InternalError(c, "failed to list alert definitions")
	}

	return Success(c, defs)
}

// GetByID handles GET /v1/alerts/:id
// Returns a single definition including its run-state fields.
func (h *AlertHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return BadRequest(c, "id must be a positive integer")
	}

	def, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDefinitionNotFound) {
			return NotFound(c, "alert definition not found")
		}
		h.logger.Error("failed to get alert definition", "id", id, "error", err)
		return InternalError(c, "failed to get alert definition")
	}

	return Success(c, def)
}

// Update handles PUT /v1/alerts/:id
// Updates an existing definition. Run-state fields are owned by the
// scheduler and cannot be written through this endpoint.
func (h *AlertHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return BadRequest(c, "id must be a positive integer")
	}

	var req domain.UpdateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse request body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	def, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDefinitionNotFound) {
			return NotFound(c, "alert definition not found")
		}
		h.logger.Error("failed to get alert definition", "id", id, "error", err)
		return InternalError(c, "failed to get alert definition")
	}

	req.ApplyTo(def)
	if err := def.Validate(); err != nil {
		h.logger.Debug("validation failed", "error", err)
		return ValidationError(c, err.Error())
	}
	if err := h.evaluator.Validate(def.Condition); err != nil {
		h.logger.Debug("condition validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	if err := h.repo.Update(c.Context(), def); err != nil {
		h.logger.Error("failed to update alert definition", "id", id, "error", err)
		return InternalError(c, "failed to update alert definition")
	}

	h.logger.Info("updated alert definition", "id", def.ID)
	return Success(c, def)
}

// Delete handles DELETE /v1/alerts/:id
// Deletes an alert definition.
func (h *AlertHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return BadRequest(c, "id must be a positive integer")
	}

	if err := h.repo.Delete(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrDefinitionNotFound) {
			return NotFound(c, "alert definition not found")
		}
		h.logger.Error("failed to delete alert definition", "id", id, "error", err)
		return InternalError(c, "failed to delete alert definition")
	}

	h.logger.Info("deleted alert definition", "id", id)
	return NoContent(c)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
