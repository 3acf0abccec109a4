package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/orbitflows/orbit/pkg/credits"
	"github.com/orbitflows/orbit/pkg/engine"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence/file"
	"github.com/orbitflows/orbit/pkg/registry"
	"github.com/orbitflows/orbit/pkg/scheduler"
	"github.com/orbitflows/orbit/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCronSecret = "sweep-secret"

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := file.NewPersistence(t.TempDir())
	ledger := credits.NewStoreLedger(store.Users())
	reg := registry.NewRegistry(logger)

	eng := engine.New(store, reg, ledger, nil, logger, engine.Config{})
	batch := scheduler.NewBatch(store.Workflows(), store.Executions(), eng, logger)
	validate := validator.New(validator.WithRequiredStructEnabled())

	handlers := web.NewAPIHandlers(eng, batch, store, validate, testCronSecret)

	return handlers.Router(), store
}

func saveTriggerWorkflow(t *testing.T, store *file.Persistence, id, userID string, status models.WorkflowStatus) {
	t.Helper()

	err := store.Workflows().Save(context.Background(), &models.Workflow{
		ID:     id,
		UserID: userID,
		Name:   "Test Workflow",
		Status: status,
		Nodes:  `[{"id":"t1","type":"trigger","data":{}}]`,
		Edges:  `[]`,
	})
	require.NoError(t, err)
}

func saveUser(t *testing.T, store *file.Persistence, id string, creditBalance int) {
	t.Helper()

	err := store.Users().Save(context.Background(), &models.User{
		ID:      id,
		Email:   id + "@example.com",
		Credits: creditBalance,
	})
	require.NoError(t, err)
}

func runRequest(t *testing.T, app *fiber.App, workflowID, userID string) *http.Response {
	t.Helper()

	body, err := json.Marshal(web.RunWorkflowRequest{UserID: userID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows/"+workflowID+"/executions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestRunWorkflow_Success(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	saveUser(t, store, "user-1", 5)
	saveTriggerWorkflow(t, store, "wf-1", "user-1", models.WorkflowStatusDraft)

	resp := runRequest(t, app, "wf-1", "user-1")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result engine.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Contains(t, result.Logs, "🚀 Execution Started")
	assert.Contains(t, result.Logs, "🏁 Workflow Completed")
}

func TestRunWorkflow_MissingUserID(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/workflows/wf-1/executions", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunWorkflow_UnknownWorkflow(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	saveUser(t, store, "user-1", 5)

	resp := runRequest(t, app, "missing", "user-1")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunWorkflow_NoCredits(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	saveUser(t, store, "user-1", 0)
	saveTriggerWorkflow(t, store, "wf-1", "user-1", models.WorkflowStatusDraft)

	resp := runRequest(t, app, "wf-1", "user-1")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestRunWorkflow_NoTrigger(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	saveUser(t, store, "user-1", 5)

	err := store.Workflows().Save(context.Background(), &models.Workflow{
		ID:     "wf-1",
		UserID: "user-1",
		Name:   "Triggerless",
		Status: models.WorkflowStatusDraft,
		Nodes:  `[{"id":"s1","type":"slack","data":{}}]`,
		Edges:  `[]`,
	})
	require.NoError(t, err)

	resp := runRequest(t, app, "wf-1", "user-1")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListExecutions(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	saveUser(t, store, "user-1", 5)
	saveTriggerWorkflow(t, store, "wf-1", "user-1", models.WorkflowStatusDraft)

	resp := runRequest(t, app, "wf-1", "user-1")
	require.NoError(t, resp.Body.Close())

	req := httptest.NewRequest(http.MethodGet, "/executions?user_id=user-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Executions []models.Execution `json:"executions"`
		Count      int                `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 1, payload.Count)
	require.Len(t, payload.Executions, 1)
	assert.Equal(t, "wf-1", payload.Executions[0].WorkflowID)
}

func TestListExecutions_MissingUserID(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/executions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunBatch_RequiresBearerSecret(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRunBatch_RunsPublishedWorkflows(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	saveUser(t, store, "user-1", 5)
	saveTriggerWorkflow(t, store, "wf-pub", "user-1", models.WorkflowStatusPublished)
	saveTriggerWorkflow(t, store, "wf-draft", "user-1", models.WorkflowStatusDraft)

	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var batch web.BatchResponse
	require.NoError(t, json.Unmarshal(body, &batch))
	assert.Equal(t, 1, batch.Ran)
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 0, batch.Failed)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
