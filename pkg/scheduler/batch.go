// Package scheduler runs the periodic batch sweep over published workflows.
// An external clock (cron daemon, hosted scheduler, the API's /cron endpoint)
// decides when a sweep happens; this package decides which workflows are due
// within one.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orbitflows/orbit/pkg/engine"
	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// DefaultWindow is how far back a sweep looks when deciding whether a
// workflow's schedule fired. It should match the interval the external clock
// calls RunDue at.
const DefaultWindow = time.Minute

// Runner executes a single workflow. Satisfied by *engine.Engine.
type Runner interface {
	Execute(ctx context.Context, workflowID, userID string, kind models.TriggerKind) *engine.Result
}

// BatchResult is the outcome of one workflow within a sweep.
type BatchResult struct {
	WorkflowID string   `json:"workflow_id"`
	Success    bool     `json:"success"`
	Message    string   `json:"message,omitempty"`
	Logs       []string `json:"logs,omitempty"`
	Err        error    `json:"-"`
}

// Batch sweeps published workflows and executes the due ones.
type Batch struct {
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	runner     Runner
	logger     *slog.Logger
	window     time.Duration
	parser     cron.Parser
	now        func() time.Time
}

func NewBatch(workflows persistence.WorkflowRepository, executions persistence.ExecutionRepository, runner Runner, logger *slog.Logger) *Batch {
	return &Batch{
		workflows:  workflows,
		executions: executions,
		runner:     runner,
		logger:     logger.With("module", "scheduler"),
		window:     DefaultWindow,
		parser:     cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		now:        time.Now,
	}
}

// WithWindow overrides the due-detection window.
func (b *Batch) WithWindow(window time.Duration) *Batch {
	b.window = window

	return b
}

// RunDue executes every published workflow whose schedule fired within the
// current window. A workflow without a schedule runs on every sweep. One
// workflow's failure never stops the rest of the batch; the returned slice
// holds one result per attempted workflow, in listing order.
func (b *Batch) RunDue(ctx context.Context) ([]BatchResult, error) {
	published, err := b.workflows.Published(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published workflows: %w", err)
	}

	now := b.now()
	results := make([]BatchResult, 0, len(published))

	for _, workflow := range published {
		due, err := b.isDue(workflow, now)
		if err != nil {
			b.logger.WarnContext(ctx, "Skipping workflow with invalid schedule",
				"workflow_id", workflow.ID, "schedule", workflow.Schedule, "error", err)
			results = append(results, BatchResult{
				WorkflowID: workflow.ID,
				Success:    false,
				Message:    "Invalid schedule",
				Err:        err,
			})

			continue
		}

		if !due {
			continue
		}

		b.logger.InfoContext(ctx, "Running scheduled workflow",
			"workflow_id", workflow.ID, "user_id", workflow.UserID)

		result := b.runner.Execute(ctx, workflow.ID, workflow.UserID, models.TriggerKindAutomated)
		if !result.Success {
			// The engine records nothing for a refused run; without an error
			// entry a broken scheduled workflow would vanish from its
			// owner's activity log.
			b.recordRefusal(ctx, workflow, result.Message)
		}

		results = append(results, BatchResult{
			WorkflowID: workflow.ID,
			Success:    result.Success,
			Message:    result.Message,
			Logs:       result.Logs,
		})
	}

	b.logger.InfoContext(ctx, "Batch sweep completed",
		"published", len(published), "ran", len(results))

	return results, nil
}

// recordRefusal writes an error execution for a scheduled run the engine
// refused before traversal started.
func (b *Batch) recordRefusal(ctx context.Context, workflow *models.Workflow, message string) {
	record := &models.Execution{
		ID:         execution.NewID(),
		WorkflowID: workflow.ID,
		UserID:     workflow.UserID,
		Trigger:    models.TriggerKindAutomated,
		Status:     models.ExecutionStatusError,
		Details: []string{
			execution.LogEntry{Level: execution.LevelFailure, Message: message}.Display(),
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := b.executions.Insert(ctx, record); err != nil {
		b.logger.ErrorContext(ctx, "Failed to record refused scheduled run",
			"workflow_id", workflow.ID, "error", err)
	}
}

// isDue reports whether the workflow's cron schedule fired inside the window
// ending at now. An empty schedule means the workflow runs on every sweep.
func (b *Batch) isDue(workflow *models.Workflow, now time.Time) (bool, error) {
	if workflow.Schedule == "" {
		return true, nil
	}

	schedule, err := b.parser.Parse(workflow.Schedule)
	if err != nil {
		return false, fmt.Errorf("parse schedule %q: %w", workflow.Schedule, err)
	}

	// Due when the first activation after the window's start does not land
	// past now.
	next := schedule.Next(now.Add(-b.window))

	return !next.After(now), nil
}
