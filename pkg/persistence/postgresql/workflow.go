package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
)

// WorkflowRepository implements workflow storage on PostgreSQL.
type WorkflowRepository struct {
	db *sql.DB
}

const workflowColumns = "id, user_id, name, description, status, nodes, edges, schedule, created_at, updated_at"

func (r *WorkflowRepository) All(ctx context.Context) ([]*models.Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows ORDER BY created_at"

	return r.query(ctx, query)
}

func (r *WorkflowRepository) Published(ctx context.Context) ([]*models.Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows WHERE status = $1 ORDER BY created_at"

	return r.query(ctx, query, string(models.WorkflowStatusPublished))
}

func (r *WorkflowRepository) ByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows WHERE id = $1"

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("ByID", "workflow", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewStoreError("ByID", "workflow", id, err)
	}

	return workflow, nil
}

// Save upserts the workflow, replacing the node and edge JSON wholesale.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, user_id, name, description, status, nodes, edges, schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			schedule = EXCLUDED.schedule,
			updated_at = EXCLUDED.updated_at
	`, workflow.ID, workflow.UserID, workflow.Name, workflow.Description, string(workflow.Status),
		workflow.Nodes, workflow.Edges, workflow.Schedule, workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) query(ctx context.Context, query string, args ...any) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		description sql.NullString
		status      string
	)

	err := row.Scan(&workflow.ID, &workflow.UserID, &workflow.Name, &description, &status,
		&workflow.Nodes, &workflow.Edges, &workflow.Schedule, &workflow.CreatedAt, &workflow.UpdatedAt)
	if err != nil {
		return nil, err
	}

	workflow.Description = description.String
	workflow.Status = models.WorkflowStatus(status)

	return &workflow, nil
}
