// Package pipeline sequences the provisioning stages, gating each on the success of the previous one.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
	"github.com/Proton-105/zaza-provision/pkg/metrics"
)

// ErrInvalidTransition indicates that a requested stage order is not allowed.
var ErrInvalidTransition = errors.New("invalid stage transition")

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe stage transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// StageFunc performs one stage. Any error fails the stage.
type StageFunc func(ctx context.Context) error

type step struct {
	stage Stage
	fn    StageFunc
}

// Runner executes registered stages in order and stops at the first failure.
type Runner struct {
	log     *slog.Logger
	runID   string
	steps   []step
	onError func(ctx context.Context, err error)
	now     func() time.Time
}

// NewRunner creates a Runner. onError, when set, sees every stage error and owns its reporting.
func NewRunner(runID string, log *slog.Logger, onError func(ctx context.Context, err error)) *Runner {
	if log == nil {
		log = slog.Default()
	}

	return &Runner{
		log:     log.With(slog.String("run_id", runID)),
		runID:   runID,
		onError: onError,
		now:     time.Now,
	}
}

// AddStage appends a stage. Stages run in the order they are added.
func (r *Runner) AddStage(stage Stage, fn StageFunc) {
	r.steps = append(r.steps, step{stage: stage, fn: fn})
}

// Run walks start → stages → end. After a failure the remaining stages are reported as skipped.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		RunID:     r.runID,
		StartedAt: r.now(),
	}

	current := StageStart
	failed := false

	for _, s := range r.steps {
		if failed {
			report.Stages = append(report.Stages, StageResult{Stage: s.stage, Status: StatusSkipped})
			continue
		}

		if !IsTransitionAllowed(current, s.stage) {
			r.log.Warn("invalid stage transition", "from", current, "to", s.stage)
			err := fmt.Errorf("%w: %w", apperrors.NewStateError(fmt.Sprintf("stage %s -> %s", current, s.stage)), ErrInvalidTransition)
			r.fail(ctx, err)
			report.Stages = append(report.Stages, StageResult{Stage: s.stage, Status: StatusFailed, Error: err.Error()})
			failed = true
			continue
		}

		r.transition(current, s.stage)
		current = s.stage

		result := r.runStage(ctx, s)
		report.Stages = append(report.Stages, result)
		if result.Status == StatusFailed {
			failed = true
		}
	}

	r.transition(current, StageEnd)
	report.Final = StageEnd
	report.FinishedAt = r.now()

	metrics.SetLastRunSuccess(report.Success())
	r.log.Info("run finished", slog.Bool("success", report.Success()), slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	return report
}

func (r *Runner) runStage(ctx context.Context, s step) StageResult {
	log := r.log.With(slog.String("stage", string(s.stage)))
	log.Info("stage started")

	start := r.now()
	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else if s.fn != nil {
		err = s.fn(ctx)
	}
	elapsed := r.now().Sub(start)

	metrics.RecordStageDuration(string(s.stage), elapsed)

	if err != nil {
		log.Warn("stage failed", slog.Any("error", err), slog.Duration("elapsed", elapsed))
		r.fail(ctx, err)
		return StageResult{Stage: s.stage, Status: StatusFailed, Error: err.Error(), Duration: elapsed}
	}

	log.Info("stage completed", slog.Duration("elapsed", elapsed))
	return StageResult{Stage: s.stage, Status: StatusOK, Duration: elapsed}
}

func (r *Runner) transition(from, to Stage) {
	if !IsTransitionAllowed(from, to) {
		return
	}
	transitionRecorder(string(from), string(to))
}

func (r *Runner) fail(ctx context.Context, err error) {
	if r.onError != nil {
		r.onError(ctx, err)
	}
}
