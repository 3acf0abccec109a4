package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
)

// ExecutionRepository stores each run record as executions/<id>.json.
type ExecutionRepository struct {
	root string
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (r *ExecutionRepository) dir() string {
	return filepath.Join(r.root, "executions")
}

func (r *ExecutionRepository) Insert(_ context.Context, exec *models.Execution) error {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}

	if exec.CreatedAt.IsZero() {
		exec.CreatedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(r.dir(), 0o755); err != nil {
		return persistence.NewStoreError("Insert", "execution", exec.ID, err)
	}

	data, err := json.MarshalIndent(exec, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Insert", "execution", exec.ID, err)
	}

	path := filepath.Join(r.dir(), exec.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistence.NewStoreError("Insert", "execution", exec.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) ByUser(ctx context.Context, userID string) ([]*models.Execution, error) {
	return r.filter(ctx, func(e *models.Execution) bool { return e.UserID == userID })
}

func (r *ExecutionRepository) ByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return r.filter(ctx, func(e *models.Execution) bool { return e.WorkflowID == workflowID })
}

func (r *ExecutionRepository) filter(_ context.Context, keep func(*models.Execution) bool) ([]*models.Execution, error) {
	if _, err := os.Stat(r.dir()); os.IsNotExist(err) {
		return []*models.Execution{}, nil
	}

	files, err := fs.Glob(os.DirFS(r.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	executions := make([]*models.Execution, 0, len(files))

	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(r.dir(), file))
		if err != nil {
			return nil, fmt.Errorf("failed to read execution file %s: %w", file, err)
		}

		var exec models.Execution
		if err := json.Unmarshal(data, &exec); err != nil {
			return nil, fmt.Errorf("failed to decode execution file %s: %w", file, err)
		}

		if keep(&exec) {
			executions = append(executions, &exec)
		}
	}

	// Newest first, matching the activity log view.
	sort.Slice(executions, func(i, j int) bool {
		return executions[i].CreatedAt.After(executions[j].CreatedAt)
	})

	return executions, nil
}
