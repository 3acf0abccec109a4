// Package testutil provides test data builders shared by package tests.
package testutil

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/orbitflows/orbit/pkg/models"
)

// CreateTestWorkflow builds a draft workflow with a lone trigger node,
// applying any overrides.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		ID:     uuid.New().String(),
		UserID: "test-user",
		Name:   "Test Workflow",
		Status: models.WorkflowStatusDraft,
		Nodes:  MarshalNodes(models.Node{ID: "t1", Type: models.NodeTypeTrigger, Data: map[string]any{}}),
		Edges:  MarshalEdges(),
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithGraph sets the workflow's node and edge JSON from typed values.
func WithGraph(nodes []models.Node, edges []models.Edge) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Nodes = MarshalNodes(nodes...)
		w.Edges = MarshalEdges(edges...)
	}
}

// WithOwner sets the owning user.
func WithOwner(userID string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.UserID = userID
	}
}

// WithStatus sets the workflow status.
func WithStatus(status models.WorkflowStatus) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Status = status
	}
}

// WithSchedule sets the cron schedule.
func WithSchedule(schedule string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Schedule = schedule
	}
}

// CreateTestUser builds a user with a credit balance.
func CreateTestUser(id string, credits int) *models.User {
	return &models.User{
		ID:      id,
		Email:   id + "@example.com",
		Name:    "Test User",
		Credits: credits,
	}
}

// MarshalNodes renders nodes as the JSON text the workflow row stores.
func MarshalNodes(nodes ...models.Node) string {
	if nodes == nil {
		nodes = []models.Node{}
	}

	data, err := json.Marshal(nodes)
	if err != nil {
		panic(err)
	}

	return string(data)
}

// MarshalEdges renders edges as the JSON text the workflow row stores.
func MarshalEdges(edges ...models.Edge) string {
	if edges == nil {
		edges = []models.Edge{}
	}

	data, err := json.Marshal(edges)
	if err != nil {
		panic(err)
	}

	return string(data)
}
