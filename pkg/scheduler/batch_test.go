package scheduler

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/orbitflows/orbit/pkg/engine"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records which workflows ran and returns canned results.
type fakeRunner struct {
	ran     []string
	results map[string]*engine.Result
}

func (r *fakeRunner) Execute(_ context.Context, workflowID, _ string, kind models.TriggerKind) *engine.Result {
	if kind != models.TriggerKindAutomated {
		panic("batch must run workflows as automated")
	}

	r.ran = append(r.ran, workflowID)

	if result, ok := r.results[workflowID]; ok {
		return result
	}

	return &engine.Result{Success: true}
}

func saveWorkflow(t *testing.T, store *file.Persistence, id string, status models.WorkflowStatus, schedule string) {
	t.Helper()

	err := store.Workflows().Save(context.Background(), &models.Workflow{
		ID:       id,
		UserID:   "owner-" + id,
		Name:     "Workflow " + id,
		Status:   status,
		Schedule: schedule,
		Nodes:    `[{"id":"t1","type":"trigger","data":{}}]`,
		Edges:    `[]`,
	})
	require.NoError(t, err)
}

func newTestBatch(t *testing.T, runner Runner) (*Batch, *file.Persistence) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := file.NewPersistence(t.TempDir())

	return NewBatch(store.Workflows(), store.Executions(), runner, logger), store
}

func TestBatch_RunDue_OnlyPublished(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	batch, store := newTestBatch(t, runner)

	saveWorkflow(t, store, "pub", models.WorkflowStatusPublished, "")
	saveWorkflow(t, store, "draft", models.WorkflowStatusDraft, "")

	results, err := batch.RunDue(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "pub", results[0].WorkflowID)
	assert.Equal(t, []string{"pub"}, runner.ran)
}

func TestBatch_RunDue_FailureIsolation(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		results: map[string]*engine.Result{
			"wf-b": {Success: false, Message: "Google Drive is not connected"},
		},
	}
	batch, store := newTestBatch(t, runner)

	saveWorkflow(t, store, "wf-a", models.WorkflowStatusPublished, "")
	saveWorkflow(t, store, "wf-b", models.WorkflowStatusPublished, "")
	saveWorkflow(t, store, "wf-c", models.WorkflowStatusPublished, "")

	results, err := batch.RunDue(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Len(t, runner.ran, 3)

	byID := make(map[string]BatchResult, len(results))
	for _, result := range results {
		byID[result.WorkflowID] = result
	}

	assert.True(t, byID["wf-a"].Success)
	assert.False(t, byID["wf-b"].Success)
	assert.True(t, byID["wf-c"].Success)
}

func TestBatch_RunDue_ScheduleFiltering(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	batch, store := newTestBatch(t, runner)

	// Sweep pinned to 09:00; the hourly schedule just fired, the midnight
	// one did not.
	batch.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 0, 30, 0, time.UTC)
	}

	saveWorkflow(t, store, "hourly", models.WorkflowStatusPublished, "0 * * * *")
	saveWorkflow(t, store, "midnight", models.WorkflowStatusPublished, "0 0 * * *")

	results, err := batch.RunDue(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "hourly", results[0].WorkflowID)
}

func TestBatch_RunDue_InvalidSchedule(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	batch, store := newTestBatch(t, runner)

	saveWorkflow(t, store, "bad", models.WorkflowStatusPublished, "not a cron line")
	saveWorkflow(t, store, "good", models.WorkflowStatusPublished, "")

	results, err := batch.RunDue(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, []string{"good"}, runner.ran)
}

func TestBatch_RunDue_RecordsRefusedRuns(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: map[string]*engine.Result{
		"broke": {Success: false, Message: engine.MessageNoCredits},
	}}
	batch, store := newTestBatch(t, runner)

	saveWorkflow(t, store, "broke", models.WorkflowStatusPublished, "")
	saveWorkflow(t, store, "fine", models.WorkflowStatusPublished, "")

	results, err := batch.RunDue(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The refused run leaves an error entry in the owner's history.
	executions, err := store.Executions().ByWorkflow(context.Background(), "broke")
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, models.ExecutionStatusError, executions[0].Status)
	assert.Equal(t, models.TriggerKindAutomated, executions[0].Trigger)
	assert.Equal(t, []string{"❌ " + engine.MessageNoCredits}, executions[0].Details)

	// Runs the engine accepted are the engine's to record.
	executions, err = store.Executions().ByWorkflow(context.Background(), "fine")
	require.NoError(t, err)
	assert.Empty(t, executions)
}
