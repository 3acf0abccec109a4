package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/orbitflows/orbit/pkg/engine"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
	"github.com/orbitflows/orbit/pkg/scheduler"
)

type APIHandlers struct {
	engine     *engine.Engine
	batch      *scheduler.Batch
	store      persistence.Persistence
	validator  *validator.Validate
	cronSecret string
}

func NewAPIHandlers(
	eng *engine.Engine,
	batch *scheduler.Batch,
	store persistence.Persistence,
	validate *validator.Validate,
	cronSecret string,
) *APIHandlers {
	return &APIHandlers{
		engine:     eng,
		batch:      batch,
		store:      store,
		validator:  validate,
		cronSecret: cronSecret,
	}
}

// RunWorkflow executes one workflow synchronously and returns the run result
// with its display log. Runs refused before traversal map to problem
// responses; a run that traversed always comes back 200, step failures
// included in the log.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req RunWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result := h.engine.Execute(c.Context(), id, req.UserID, models.TriggerKindManual)
	if !result.Success {
		switch result.Message {
		case engine.MessageWorkflowNotFound:
			return notFound(c, result.Message)
		case engine.MessageNoCredits:
			return paymentRequired(c, result.Message)
		default:
			return unprocessable(c, result.Message)
		}
	}

	return c.JSON(result)
}

// ListExecutions returns a user's run history, newest first.
func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return badRequest(c, "user_id query parameter is required")
	}

	executions, err := h.store.Executions().ByUser(c.Context(), userID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": executions,
		"count":      len(executions),
	})
}

// RunBatch triggers one scheduler sweep. The endpoint is meant for an
// external cron caller and is guarded by a shared bearer secret.
func (h *APIHandlers) RunBatch(c fiber.Ctx) error {
	if !h.authorizedCronCaller(c) {
		return unauthorized(c, "Invalid or missing bearer token")
	}

	results, err := h.batch.RunDue(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	response := BatchResponse{Ran: len(results), Results: results}
	for _, result := range results {
		if result.Success {
			response.Succeeded++
		} else {
			response.Failed++
		}
	}

	return c.JSON(response)
}

func (h *APIHandlers) authorizedCronCaller(c fiber.Ctx) bool {
	if h.cronSecret == "" {
		return true
	}

	token, ok := strings.CutPrefix(c.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}

// HealthCheck reports storage reachability.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.store.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// Register mounts every endpoint on the app. Middleware must already be
// installed.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Orbit API")
	})

	app.Post("/workflows/:id/executions", h.RunWorkflow)
	app.Get("/executions", h.ListExecutions)
	app.Get("/cron", h.RunBatch)
	app.Get("/health", h.HealthCheck)
}

// Router returns a bare app with every endpoint mounted.
func (h *APIHandlers) Router() *fiber.App {
	app := fiber.New()
	h.Register(app)

	return app
}
