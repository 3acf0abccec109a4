package models

import "time"

// TriggerKind distinguishes how a run was started.
type TriggerKind string

const (
	TriggerKindManual    TriggerKind = "manual"    // Interactive caller
	TriggerKindAutomated TriggerKind = "automated" // Scheduler batch
)

// ExecutionStatus is the terminal state of a run as recorded in history.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
	ExecutionStatusError   ExecutionStatus = "error"
)

// Execution is one append-only history record, written once after a run
// completes and never updated. Details holds the run log already serialized
// to its display line format; that format is the contract with the activity
// log viewer.
type Execution struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflow_id" validate:"required"`
	UserID     string          `json:"user_id"     validate:"required"`
	Trigger    TriggerKind     `json:"trigger"     validate:"required,oneof=manual automated"`
	Status     ExecutionStatus `json:"status"      validate:"required"`
	Details    []string        `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}
