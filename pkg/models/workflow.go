// Package models defines the core domain models for workflow execution.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"     // Editable, runnable only by its owner
	WorkflowStatusPublished WorkflowStatus = "published" // Eligible for unattended scheduled runs
)

// Workflow represents a persisted workflow definition. The node and edge sets
// are stored as JSON text, exactly as the editor collaborator saves them; the
// engine treats them as a read-only snapshot taken once per run.
type Workflow struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"     validate:"required"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"      validate:"required,oneof=draft published"`
	Nodes       string         `json:"nodes"` // JSON array of Node
	Edges       string         `json:"edges"` // JSON array of Edge
	Schedule    string         `json:"schedule,omitempty"` // optional cron expression for automated runs
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsPublished reports whether the workflow is eligible for automated runs.
func (w *Workflow) IsPublished() bool {
	return w.Status == WorkflowStatusPublished
}
