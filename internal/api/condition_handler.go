package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"vigil-go/internal/condition"
	"vigil-go/internal/snapshot"
)

// ConditionHandler serves the condition authoring surface: static
// validation, dry-run testing against live values, and the variable and
// template listings.
type ConditionHandler struct {
	catalog   *condition.Catalog
	evaluator *condition.Evaluator
	builder   snapshot.Builder
	logger    *slog.Logger
}

// NewConditionHandler creates a new condition handler.
func NewConditionHandler(catalog *condition.Catalog, evaluator *condition.Evaluator, builder snapshot.Builder, logger *slog.Logger) *ConditionHandler {
	return &ConditionHandler{
		catalog:   catalog,
		evaluator: evaluator,
		builder:   builder,
		logger:    logger,
	}
}

// validateRequest is the payload for condition validation.
type validateRequest struct {
	Condition string `json:"condition"`
}

// testRequest is the payload for a condition dry run. Variables override
// the freshly built snapshot, so authors can probe "what if" values.
type testRequest struct {
	Condition string         `json:"condition"`
	Variables map[string]any `json:"variables"`
}

// testResponse reports the dry-run outcome.
type testResponse struct {
	Result    bool              `json:"result"`
	Variables []string          `json:"variables"`
	Values    map[string]string `json:"values,omitempty"`
}

// Validate handles POST /v1/conditions/validate
// Statically checks grammar, variables and operators without evaluating.
func (h *ConditionHandler) Validate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest(c, "invalid request body")
	}

	if err := h.evaluator.Validate(req.Condition); err != nil {
		return ValidationError(c, err.Error())
	}

	return Success(c, map[string]bool{"valid": true})
}

// Test handles POST /v1/conditions/test
// Evaluates a condition against a fresh snapshot so authors can preview
// behavior before activating an alert. Caller-supplied variables override
// the snapshot values. The same fail-closed semantics as a real sweep apply.
func (h *ConditionHandler) Test(c *fiber.Ctx) error {
	var req testRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest(c, "invalid request body")
	}

	if err := h.evaluator.Validate(req.Condition); err != nil {
		return ValidationError(c, err.Error())
	}

	snap, err := h.builder.BuildSnapshot(c.Context())
	if err != nil {
		h.logger.Error("failed to build snapshot for dry run", "error", err)
		return InternalError(c, "failed to build snapshot")
	}
	for name, value := range req.Variables {
		snap[name] = value
	}

	referenced := h.evaluator.Referenced(req.Condition)
	values := make(map[string]string, len(referenced))
	for _, name := range referenced {
		if v, ok := snap[name]; ok {
			values[name] = snapshot.FormatValue(v)
		}
	}

	return Success(c, testResponse{
		Result:    h.evaluator.Evaluate(req.Condition, snap),
		Variables: referenced,
		Values:    values,
	})
}

// Variables handles GET /v1/conditions/variables
// Returns the catalog in authoring order.
func (h *ConditionHandler) Variables(c *fiber.Ctx) error {
	return Success(c, h.catalog.Variables())
}

// Templates handles GET /v1/conditions/templates
// Returns the built-in starting conditions.
func (h *ConditionHandler) Templates(c *fiber.Ctx) error {
	return Success(c, condition.Templates())
}
