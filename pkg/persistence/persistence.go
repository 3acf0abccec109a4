// Package persistence provides the storage abstraction consumed by the
// engine: workflow definitions, owning users, and the append-only execution
// history.
package persistence

import (
	"context"

	"github.com/orbitflows/orbit/pkg/models"
)

// Persistence bundles the repositories behind one connection lifecycle.
type Persistence interface {
	Workflows() WorkflowRepository
	Users() UserRepository
	Executions() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions. Save is a full replacement
// of the node and edge JSON, never an incremental patch.
type WorkflowRepository interface {
	All(ctx context.Context) ([]*models.Workflow, error)
	Published(ctx context.Context) ([]*models.Workflow, error)
	ByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores owning accounts, including credit balances and the
// OAuth credentials the handlers consume.
type UserRepository interface {
	ByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error

	// AdjustCredits applies delta to the user's balance in one atomic
	// read-modify-write and returns the new balance.
	AdjustCredits(ctx context.Context, id string, delta int) (int, error)
}

// ExecutionRepository stores run history. Records are insert-only; nothing
// updates or deletes them.
type ExecutionRepository interface {
	Insert(ctx context.Context, exec *models.Execution) error
	ByUser(ctx context.Context, userID string) ([]*models.Execution, error)
	ByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)
}
