package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
)

// ExecutionRepository implements run history storage on PostgreSQL. Records
// are insert-only.
type ExecutionRepository struct {
	db *sql.DB
}

func (r *ExecutionRepository) Insert(ctx context.Context, exec *models.Execution) error {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}

	if exec.CreatedAt.IsZero() {
		exec.CreatedAt = time.Now().UTC()
	}

	details, err := json.Marshal(exec.Details)
	if err != nil {
		return persistence.NewStoreError("Insert", "execution", exec.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflow_executions (id, workflow_id, user_id, trigger_kind, status, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, exec.ID, exec.WorkflowID, exec.UserID, string(exec.Trigger), string(exec.Status), details, exec.CreatedAt)
	if err != nil {
		return persistence.NewStoreError("Insert", "execution", exec.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) ByUser(ctx context.Context, userID string) ([]*models.Execution, error) {
	return r.query(ctx, "user_id", userID)
}

func (r *ExecutionRepository) ByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return r.query(ctx, "workflow_id", workflowID)
}

func (r *ExecutionRepository) query(ctx context.Context, column, value string) ([]*models.Execution, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow_id, user_id, trigger_kind, status, details, created_at
		FROM workflow_executions WHERE %s = $1 ORDER BY created_at DESC
	`, column)

	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, exec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	return executions, nil
}

func scanExecution(rows *sql.Rows) (*models.Execution, error) {
	var (
		exec    models.Execution
		trigger string
		status  string
		details []byte
	)

	err := rows.Scan(&exec.ID, &exec.WorkflowID, &exec.UserID, &trigger, &status, &details, &exec.CreatedAt)
	if err != nil {
		return nil, err
	}

	exec.Trigger = models.TriggerKind(trigger)
	exec.Status = models.ExecutionStatus(status)

	if err := json.Unmarshal(details, &exec.Details); err != nil {
		return nil, fmt.Errorf("failed to decode execution details: %w", err)
	}

	return &exec, nil
}
