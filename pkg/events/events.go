// Package events defines the run lifecycle notifications published on the
// event bus for activity feed and billing collaborators.
package events

import (
	"time"

	"github.com/orbitflows/orbit/pkg/models"
)

type EventType string

// Topic carries all run lifecycle events.
const Topic = "orbit.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent  EventType = "execution.started"
	ExecutionFinishedEvent EventType = "execution.finished"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	UserID     string    `json:"user_id"`
}

// ExecutionStarted is published when a run passes its pre-checks and begins
// traversal.
type ExecutionStarted struct {
	BaseEvent

	ExecutionID string             `json:"execution_id"`
	Trigger     models.TriggerKind `json:"trigger"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

// ExecutionFinished is published after the run log is persisted.
type ExecutionFinished struct {
	BaseEvent

	ExecutionID string                 `json:"execution_id"`
	Trigger     models.TriggerKind     `json:"trigger"`
	Status      models.ExecutionStatus `json:"status"`
	Steps       int                    `json:"steps"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}
