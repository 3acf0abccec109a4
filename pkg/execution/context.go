// Package execution holds the per-run state threaded between node handlers:
// a single mutable content slot and an append-only structured log.
package execution

import (
	"fmt"

	"github.com/google/uuid"
)

// Context is the ephemeral state of one run. It lives only for the duration
// of a single traversal and is never persisted; only its log survives, as
// display lines attached to the execution record.
//
// The content slot is deliberately a single value. Every content-producing
// node (scraper, drive read, AI agent) overwrites it and every consuming
// node (notion, slack, email) reads whatever the most recent producer left.
type Context struct {
	ID         string
	WorkflowID string

	content    string
	hasContent bool
	entries    []LogEntry
}

// NewID returns a short unique execution id.
func NewID() string {
	return "exec-" + uuid.New().String()[:8]
}

// NewContext creates a fresh run context with a short unique execution id.
func NewContext(workflowID string) *Context {
	return &Context{
		ID:         NewID(),
		WorkflowID: workflowID,
	}
}

// SetContent overwrites the content slot.
func (c *Context) SetContent(content string) {
	c.content = content
	c.hasContent = true
}

// Content returns the current value of the content slot.
func (c *Context) Content() string {
	return c.content
}

// HasContent reports whether any node has written the content slot yet.
func (c *Context) HasContent() bool {
	return c.hasContent
}

// Info appends an informational entry to the run log.
func (c *Context) Info(stepID, format string, args ...any) {
	c.append(LevelInfo, stepID, format, args...)
}

// Success appends a success entry to the run log.
func (c *Context) Success(stepID, format string, args ...any) {
	c.append(LevelSuccess, stepID, format, args...)
}

// Failure appends a failure entry to the run log.
func (c *Context) Failure(stepID, format string, args ...any) {
	c.append(LevelFailure, stepID, format, args...)
}

func (c *Context) append(level Level, stepID, format string, args ...any) {
	c.entries = append(c.entries, LogEntry{
		Level:   level,
		StepID:  stepID,
		Message: fmt.Sprintf(format, args...),
	})
}

// Append adds a prebuilt entry to the run log.
func (c *Context) Append(entry LogEntry) {
	c.entries = append(c.entries, entry)
}

// HasFailures reports whether any failure entry was logged during the run.
func (c *Context) HasFailures() bool {
	for _, entry := range c.entries {
		if entry.Level == LevelFailure {
			return true
		}
	}

	return false
}

// Entries returns the accumulated log entries in append order.
func (c *Context) Entries() []LogEntry {
	return c.entries
}

// DisplayLines renders the log in its human-readable line format. This is
// the serialization used at the persistence and UI boundary.
func (c *Context) DisplayLines() []string {
	lines := make([]string, 0, len(c.entries))
	for _, entry := range c.entries {
		lines = append(lines, entry.Display())
	}

	return lines
}
