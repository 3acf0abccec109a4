package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
)

// WorkflowRepository stores each workflow as workflows/<id>.json.
type WorkflowRepository struct {
	root string
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (r *WorkflowRepository) dir() string {
	return filepath.Join(r.root, "workflows")
}

// All returns every stored workflow sorted by creation time.
func (r *WorkflowRepository) All(ctx context.Context) ([]*models.Workflow, error) {
	if _, err := os.Stat(r.dir()); os.IsNotExist(err) {
		return []*models.Workflow{}, nil
	}

	files, err := fs.Glob(os.DirFS(r.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(files))

	for _, file := range files {
		workflow, err := r.ByID(ctx, file[:len(file)-len(".json")])
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

// Published returns every workflow eligible for automated runs.
func (r *WorkflowRepository) Published(ctx context.Context) ([]*models.Workflow, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	published := make([]*models.Workflow, 0, len(all))

	for _, workflow := range all {
		if workflow.IsPublished() {
			published = append(published, workflow)
		}
	}

	return published, nil
}

func (r *WorkflowRepository) ByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(filepath.Join(r.dir(), id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewStoreError("ByID", "workflow", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewStoreError("ByID", "workflow", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewStoreError("ByID", "workflow", id, err)
	}

	return &workflow, nil
}

func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := os.MkdirAll(r.dir(), 0o755); err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	path := filepath.Join(r.dir(), workflow.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(filepath.Join(r.dir(), id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	return nil
}
