// Package engine implements the workflow traversal engine: it walks a stored
// graph from its trigger node, dispatches each node to its capability
// handler, threads the run context between steps, and settles the run's
// credit and history record.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/orbitflows/orbit/pkg/credits"
	"github.com/orbitflows/orbit/pkg/eventbus"
	"github.com/orbitflows/orbit/pkg/events"
	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/otelhelper"
	"github.com/orbitflows/orbit/pkg/persistence"
	"github.com/orbitflows/orbit/pkg/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Caller-facing messages for runs refused before traversal starts.
const (
	MessageNoTrigger        = "No Trigger node found"
	MessageWorkflowNotFound = "Workflow not found"
	MessageNoCredits        = "Not enough credits! Please upgrade."
	MessageCorruptGraph     = "Workflow definition is corrupted"
)

// DefaultMaxSteps bounds traversal so a malformed cyclic edge set cannot run
// forever.
const DefaultMaxSteps = 100

// Config holds the engine's policy knobs.
type Config struct {
	// MaxSteps caps the number of nodes visited in one run. Zero or negative
	// selects DefaultMaxSteps.
	MaxSteps int `yaml:"max_steps"`

	// GateAutomatedRuns extends the credit gate to scheduler-triggered runs.
	// Off by default: a published workflow keeps running on schedule even
	// when its owner's balance hits zero.
	GateAutomatedRuns bool `yaml:"gate_automated_runs"`

	// DeductBeforePersist moves the credit deduction ahead of the history
	// insert. The default order (persist, then deduct) means a failed insert
	// never consumes a credit.
	DeductBeforePersist bool `yaml:"deduct_before_persist"`
}

func (c Config) maxSteps() int {
	if c.MaxSteps <= 0 {
		return DefaultMaxSteps
	}

	return c.MaxSteps
}

// Result is what every caller receives once a run request is handled. The
// engine never surfaces an error for anything that happens after traversal
// starts; per-step failures live in Logs.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Logs    []string `json:"logs,omitempty"`
}

// Engine executes stored workflow graphs.
type Engine struct {
	store    persistence.Persistence
	registry *registry.Registry
	ledger   credits.Ledger
	bus      eventbus.EventPublisher
	logger   *slog.Logger
	tracer   trace.Tracer
	config   Config
}

// New assembles an engine. The event bus is optional; a nil bus disables
// lifecycle event publishing.
func New(store persistence.Persistence, reg *registry.Registry, ledger credits.Ledger, bus eventbus.EventPublisher, logger *slog.Logger, config Config) *Engine {
	return &Engine{
		store:    store,
		registry: reg,
		ledger:   ledger,
		bus:      bus,
		logger:   logger,
		tracer:   otel.Tracer("orbit.engine"),
		config:   config,
	}
}

// Execute runs one workflow on behalf of its owner. Structural problems (no
// such workflow, owner mismatch, missing trigger) and an exhausted credit
// balance fail fast with no history record and no deduction; once traversal
// begins the caller always gets a successful Result whose log tells the
// step-by-step story.
func (e *Engine) Execute(ctx context.Context, workflowID, userID string, kind models.TriggerKind) *Result {
	logger := e.logger.With(
		"module", "engine",
		"workflow_id", workflowID,
		"user_id", userID,
		"trigger_kind", string(kind),
	)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.UserIDKey, userID),
		attribute.String(otelhelper.TriggerKindKey, string(kind)),
	)
	defer span.End()

	user, err := e.store.Users().ByID(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to fetch user", "error", err)
		otelhelper.SetError(span, err)

		return &Result{Success: false, Message: MessageWorkflowNotFound}
	}

	if e.creditGated(kind) {
		balance, err := e.ledger.Balance(ctx, userID)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to read credit balance", "error", err)
			otelhelper.SetError(span, err)

			return &Result{Success: false, Message: MessageNoCredits}
		}

		if balance <= 0 {
			logger.InfoContext(ctx, "Run refused, no credits left", "balance", balance)

			return &Result{Success: false, Message: MessageNoCredits}
		}
	}

	workflow, err := e.store.Workflows().ByID(ctx, workflowID)
	if err != nil || workflow.UserID != userID {
		// An existing workflow owned by somebody else is indistinguishable
		// from a missing one.
		if err != nil {
			logger.ErrorContext(ctx, "Failed to fetch workflow", "error", err)
		}

		return &Result{Success: false, Message: MessageWorkflowNotFound}
	}

	graph, err := models.ParseGraph(workflow.Nodes, workflow.Edges)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to parse workflow graph", "error", err)
		otelhelper.SetError(span, err)

		return &Result{Success: false, Message: MessageCorruptGraph}
	}

	trigger, err := graph.Trigger()
	if err != nil {
		logger.InfoContext(ctx, "Workflow has no trigger node")

		return &Result{Success: false, Message: MessageNoTrigger}
	}

	execCtx := execution.NewContext(workflowID)
	logger = logger.With("execution_id", execCtx.ID)
	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, execCtx.ID))

	logger.InfoContext(ctx, "Starting workflow execution")
	e.publish(ctx, execCtx.ID, events.ExecutionStarted{
		BaseEvent:   e.baseEvent(events.ExecutionStartedEvent, workflow.ID, userID),
		ExecutionID: execCtx.ID,
		Trigger:     kind,
	})

	execCtx.Append(execution.StartLine())

	steps := e.traverse(ctx, logger, graph, trigger, execCtx, user)

	status := models.ExecutionStatusSuccess
	if execCtx.HasFailures() {
		status = models.ExecutionStatusFailed
	}

	e.settle(ctx, logger, workflow, kind, status, execCtx)

	e.publish(ctx, execCtx.ID, events.ExecutionFinished{
		BaseEvent:   e.baseEvent(events.ExecutionFinishedEvent, workflow.ID, userID),
		ExecutionID: execCtx.ID,
		Trigger:     kind,
		Status:      status,
		Steps:       steps,
	})

	logger.InfoContext(ctx, "Workflow execution completed", "steps", steps)

	return &Result{Success: true, Logs: execCtx.DisplayLines()}
}

func (e *Engine) creditGated(kind models.TriggerKind) bool {
	if kind == models.TriggerKindAutomated {
		return e.config.GateAutomatedRuns
	}

	return true
}

// traverse walks the graph from the trigger node, dispatching handlers and
// following the first outgoing edge of each node, until it reaches a node
// with no outgoing edge, a dangling edge, or the step cap. It returns the
// number of nodes visited.
func (e *Engine) traverse(ctx context.Context, logger *slog.Logger, graph *models.Graph, trigger models.Node, execCtx *execution.Context, user *models.User) int {
	current := trigger
	steps := 0

	for {
		steps++
		if steps > e.config.maxSteps() {
			logger.WarnContext(ctx, "Step cap reached, stopping traversal", "max_steps", e.config.maxSteps())
			execCtx.Failure(current.ID, "Run stopped: step limit of %d reached", e.config.maxSteps())

			break
		}

		e.executeNode(ctx, logger, current, execCtx, user)

		edge, ok := graph.FirstEdgeFrom(current.ID)
		if !ok {
			execCtx.Append(execution.CompletionLine())

			break
		}

		next, ok := graph.NodeByID(edge.Target)
		if !ok {
			// A dangling edge ends the run the same way a terminal node does.
			logger.WarnContext(ctx, "Edge target does not exist, ending run", "edge_id", edge.ID, "target", edge.Target)
			execCtx.Append(execution.CompletionLine())

			break
		}

		current = next
	}

	return steps
}

// executeNode dispatches one node to its capability handler. Handler errors
// become failure log lines; they never abort the traversal.
func (e *Engine) executeNode(ctx context.Context, logger *slog.Logger, node models.Node, execCtx *execution.Context, user *models.User) {
	if node.Type == models.NodeTypeTrigger {
		return
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.step",
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, node.Type),
	)
	defer span.End()

	if !e.registry.IsRegistered(node.Type) {
		logger.WarnContext(ctx, "Skipping node with unknown type", "node_id", node.ID, "node_type", node.Type)

		return
	}

	handler, err := e.registry.CreateHandler(node.Type, node.Data)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create handler", "node_id", node.ID, "node_type", node.Type, "error", err)
		otelhelper.SetError(span, err)
		execCtx.Failure(node.ID, "%s failed: %v", node.Type, err)

		return
	}

	if err := handler.Execute(ctx, execCtx, user, logger); err != nil {
		logger.ErrorContext(ctx, "Handler failed", "node_id", node.ID, "node_type", node.Type, "error", err)
		otelhelper.SetError(span, err)
		execCtx.Failure(node.ID, "%s failed: %v", node.Type, err)
	}
}

// settle records the run and consumes one credit. The two writes form one
// logical transaction: in the default order a failed insert skips the
// deduction, and with DeductBeforePersist a failed deduction skips the
// insert.
func (e *Engine) settle(ctx context.Context, logger *slog.Logger, workflow *models.Workflow, kind models.TriggerKind, status models.ExecutionStatus, execCtx *execution.Context) {
	record := &models.Execution{
		ID:         execCtx.ID,
		WorkflowID: workflow.ID,
		UserID:     workflow.UserID,
		Trigger:    kind,
		Status:     status,
		Details:    execCtx.DisplayLines(),
		CreatedAt:  time.Now().UTC(),
	}

	if e.config.DeductBeforePersist {
		if err := e.ledger.Deduct(ctx, workflow.UserID); err != nil {
			logger.ErrorContext(ctx, "Failed to deduct credit, skipping history insert", "error", err)

			return
		}

		if err := e.store.Executions().Insert(ctx, record); err != nil {
			logger.ErrorContext(ctx, "Failed to persist execution record", "error", err)
		}

		return
	}

	if err := e.store.Executions().Insert(ctx, record); err != nil {
		logger.ErrorContext(ctx, "Failed to persist execution record, skipping deduction", "error", err)

		return
	}

	if err := e.ledger.Deduct(ctx, workflow.UserID); err != nil {
		logger.ErrorContext(ctx, "Failed to deduct credit", "error", err)
	}
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID, userID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		UserID:     userID,
	}
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "event_type", string(event.GetType()), "error", err)
	}
}
