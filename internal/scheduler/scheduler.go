// Package scheduler runs the periodic sweep that evaluates every active
// alert definition against a fresh metrics snapshot.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"vigil-go/internal/condition"
	"vigil-go/internal/dispatch"
	"vigil-go/internal/domain"
	"vigil-go/internal/metrics"
	"vigil-go/internal/snapshot"
	"vigil-go/internal/store"
)

// ErrSweepInProgress is returned when a sweep is requested while the
// previous one is still running. Sweeps never queue; the skipped tick's
// work happens on the next one.
var ErrSweepInProgress = errors.New("sweep already in progress")

// Scheduler sweeps the active definitions on a fixed interval. One sweep
// builds exactly one snapshot, shared read-only by every evaluation in it.
type Scheduler struct {
	repo            store.AlertRepository
	builder         snapshot.Builder
	evaluator       *condition.Evaluator
	dispatcher      *dispatch.Dispatcher
	logger          *slog.Logger
	interval        time.Duration
	cooldown        time.Duration
	dispatchTimeout time.Duration

	running atomic.Bool
	now     func() time.Time
}

// Options configures a Scheduler.
type Options struct {
	// Interval between sweeps.
	Interval time.Duration

	// Cooldown is the minimum time between triggers of one definition.
	Cooldown time.Duration

	// DispatchTimeout bounds one channel delivery.
	DispatchTimeout time.Duration
}

// New creates a scheduler.
func New(
	repo store.AlertRepository,
	builder snapshot.Builder,
	evaluator *condition.Evaluator,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
	opts Options,
) *Scheduler {
	return &Scheduler{
		repo:            repo,
		builder:         builder,
		evaluator:       evaluator,
		dispatcher:      dispatcher,
		logger:          logger,
		interval:        opts.Interval,
		cooldown:        opts.Cooldown,
		dispatchTimeout: opts.DispatchTimeout,
		now:             time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start runs the sweep loop until the context is canceled. This is a
// blocking call.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("starting alert scheduler",
		"interval", s.interval.String(),
		"cooldown", s.cooldown.String(),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping alert scheduler")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// Sweep evaluates every active definition once. Overlapping sweeps are
// suppressed: if the previous sweep is still running this returns
// ErrSweepInProgress without doing any work.
func (s *Scheduler) Sweep(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		metrics.SweepsSkippedTotal.Inc()
		s.logger.Warn("sweep still running, skipping this tick")
		return ErrSweepInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	metrics.SweepsTotal.Inc()

	snap, err := s.builder.BuildSnapshot(ctx)
	if err != nil {
		metrics.SnapshotFailuresTotal.Inc()
		s.logger.Error("snapshot build failed, aborting tick", "error", err)
		return err
	}

	defs, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active definitions", "error", err)
		return err
	}
	metrics.ActiveDefinitions.Set(float64(len(defs)))

	var fired int
	for _, def := range defs {
		if s.evaluateOne(ctx, def, snap) {
			fired++
		}
	}

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("sweep complete",
		"definitions", len(defs),
		"fired", fired,
		"duration", time.Since(start).String(),
	)
	return nil
}

// evaluateOne handles a single definition and reports whether it fired.
// A panic in one definition's evaluation is contained so the rest of the
// sweep proceeds.
func (s *Scheduler) evaluateOne(ctx context.Context, def *domain.AlertDefinition, snap snapshot.Snapshot) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic evaluating definition",
				"alert_id", def.ID,
				"panic", r,
			)
			fired = false
		}
	}()

	now := s.now().UTC()

	if def.InCooldown(now, s.cooldown) {
		metrics.CooldownSkipsTotal.Inc()
		s.logger.Debug("definition in cooldown, skipping",
			"alert_id", def.ID,
			"last_triggered_at", def.LastTriggeredAt,
		)
		return false
	}

	if !s.evaluator.Evaluate(def.Condition, snap) {
		metrics.EvaluationsTotal.WithLabelValues("not_met").Inc()
		return false
	}
	metrics.EvaluationsTotal.WithLabelValues("met").Inc()

	// The trigger is recorded before dispatch so the count and cooldown
	// window survive delivery failures.
	def.RecordTrigger(now)

	event := domain.NewTriggerEvent(def, s.excerpt(def.Condition, snap), now)

	s.logger.Info("alert triggered",
		"alert_id", def.ID,
		"name", def.Name,
		"trigger_id", event.ID,
		"channel", string(def.Channel),
		"priority", string(def.Priority),
	)

	dispatchCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	if err := s.dispatcher.Dispatch(dispatchCtx, event); err != nil {
		s.logger.Error("dispatch failed",
			"alert_id", def.ID,
			"trigger_id", event.ID,
			"error", err,
		)
		def.RecordDispatchError(err)
	}

	if err := s.repo.Update(ctx, def); err != nil {
		metrics.RunStateWritesTotal.WithLabelValues("failure").Inc()
		s.logger.Error("failed to persist run-state", "alert_id", def.ID, "error", err)
	} else {
		metrics.RunStateWritesTotal.WithLabelValues("success").Inc()
	}

	return true
}

// excerpt captures the referenced variables with their snapshot values for
// the notification body.
func (s *Scheduler) excerpt(cond string, snap snapshot.Snapshot) map[string]string {
	names := s.evaluator.Referenced(cond)
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := snap[name]; ok {
			out[name] = snapshot.FormatValue(v)
		}
	}
	return out
}
