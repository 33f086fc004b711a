package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"vigil-go/internal/scheduler"
)

// SweepHandler exposes the manual sweep trigger for operators.
type SweepHandler struct {
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
}

// NewSweepHandler creates a new sweep handler.
func NewSweepHandler(s *scheduler.Scheduler, logger *slog.Logger) *SweepHandler {
	return &SweepHandler{
		scheduler: s,
		logger:    logger,
	}
}

// Trigger handles POST /v1/sweep
// Runs one sweep synchronously. A sweep already in progress is reported as
// a conflict rather than queued.
func (h *SweepHandler) Trigger(c *fiber.Ctx) error {
	if err := h.scheduler.Sweep(c.Context()); err != nil {
		if errors.Is(err, scheduler.ErrSweepInProgress) {
			return Conflict(c, "a sweep is already in progress")
		}
		h.logger.Error("manual sweep failed", "error", err)
		return InternalError(c, "sweep failed")
	}
	return Success(c, map[string]string{"status": "completed"})
}
