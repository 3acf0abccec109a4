package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
	"github.com/orbitflows/orbit/pkg/persistence/file"
	"github.com/orbitflows/orbit/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowRepository_SaveAndFetch(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, store.Workflows().Save(ctx, workflow))

	fetched, err := store.Workflows().ByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, fetched.Name)
	assert.Equal(t, workflow.Nodes, fetched.Nodes)

	_, err = store.Workflows().ByID(ctx, "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_Published(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	published := testutil.CreateTestWorkflow(testutil.WithStatus(models.WorkflowStatusPublished))
	draft := testutil.CreateTestWorkflow()

	require.NoError(t, store.Workflows().Save(ctx, published))
	require.NoError(t, store.Workflows().Save(ctx, draft))

	listed, err := store.Workflows().Published(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, published.ID, listed[0].ID)
}

func TestWorkflowRepository_Delete(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, store.Workflows().Save(ctx, workflow))
	require.NoError(t, store.Workflows().Delete(ctx, workflow.ID))

	_, err := store.Workflows().ByID(ctx, workflow.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestUserRepository_AdjustCredits(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Users().Save(ctx, testutil.CreateTestUser("user-1", 2)))

	balance, err := store.Users().AdjustCredits(ctx, "user-1", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, balance)

	balance, err = store.Users().AdjustCredits(ctx, "user-1", -1)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	// A balance can never go negative.
	_, err = store.Users().AdjustCredits(ctx, "user-1", -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrInsufficientCredits)

	user, err := store.Users().ByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, user.Credits)
}

func TestUserRepository_NotFound(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	_, err := store.Users().ByID(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, persistence.IsUserNotFound(err))
}

func TestExecutionRepository_NewestFirst(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"exec-old", "exec-mid", "exec-new"} {
		require.NoError(t, store.Executions().Insert(ctx, &models.Execution{
			ID:         id,
			WorkflowID: "wf-1",
			UserID:     "user-1",
			Trigger:    models.TriggerKindManual,
			Status:     models.ExecutionStatusSuccess,
			Details:    []string{"🚀 Execution Started", "🏁 Workflow Completed"},
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	byUser, err := store.Executions().ByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, byUser, 3)
	assert.Equal(t, "exec-new", byUser[0].ID)
	assert.Equal(t, "exec-old", byUser[2].ID)

	byWorkflow, err := store.Executions().ByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, byWorkflow, 3)

	other, err := store.Executions().ByUser(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)
}
