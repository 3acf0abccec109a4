// Package main provides the Orbit API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/orbitflows/orbit/pkg/cmd"
	"github.com/orbitflows/orbit/pkg/config"
	"github.com/orbitflows/orbit/pkg/engine"
	"github.com/orbitflows/orbit/pkg/eventbus"
	"github.com/orbitflows/orbit/pkg/events"
	"github.com/orbitflows/orbit/pkg/handlers/aiagent"
	"github.com/orbitflows/orbit/pkg/persistence"
	"github.com/orbitflows/orbit/pkg/scheduler"
	"github.com/orbitflows/orbit/pkg/web"
)

type API struct {
	logger      *slog.Logger
	config      *config.Config
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	cfg *config.Config,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		config:      cfg,
		persistence: store,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	var generator aiagent.Generator
	if a.config.GeminiAPIKey != "" {
		generator = aiagent.NewGeminiGenerator(a.config.GeminiAPIKey, a.config.GeminiModel)
	}

	registry := cmd.NewRegistry(a.logger, generator)
	ledger := cmd.NewLedger(a.logger, a.persistence, a.config.RedisAddr)

	eng := engine.New(a.persistence, registry, ledger, a.eventBus, a.logger, a.config.Engine)
	batch := scheduler.NewBatch(a.persistence.Workflows(), a.persistence.Executions(), eng, a.logger)

	handlers := web.NewAPIHandlers(eng, batch, a.persistence, a.validate, a.config.CronSecret)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	handlers.Register(app)

	return app
}

// SubscribeActivity attaches the run lifecycle consumers to the event bus.
// Finished runs land in the server log as one activity line each, the
// in-process counterpart of the activity feed the frontend renders from the
// execution history.
func (a *API) SubscribeActivity(ctx context.Context) error {
	a.eventBus.Handle(events.ExecutionStartedEvent, func(ctx context.Context, event any) error {
		started, ok := event.(*events.ExecutionStarted)
		if !ok {
			return nil
		}

		a.logger.InfoContext(ctx, "Execution started",
			"execution_id", started.ExecutionID,
			"workflow_id", started.WorkflowID,
			"user_id", started.UserID,
			"trigger_kind", string(started.Trigger),
		)

		return nil
	})

	a.eventBus.Handle(events.ExecutionFinishedEvent, func(ctx context.Context, event any) error {
		finished, ok := event.(*events.ExecutionFinished)
		if !ok {
			return nil
		}

		a.logger.InfoContext(ctx, "Execution finished",
			"execution_id", finished.ExecutionID,
			"workflow_id", finished.WorkflowID,
			"user_id", finished.UserID,
			"status", string(finished.Status),
			"steps", finished.Steps,
		)

		return nil
	})

	return a.eventBus.Subscribe(ctx)
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
