package execution

// Level classifies a run log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
)

// Markers used by the display serialization. The activity log viewer parses
// these exact prefixes, so they are part of the persistence contract.
const (
	markerStart      = "🚀"
	markerSuccess    = "✅"
	markerFailure    = "❌"
	markerCompletion = "🏁"
)

// LogEntry is one structured event in a run log.
type LogEntry struct {
	Level   Level  `json:"level"`
	StepID  string `json:"step_id,omitempty"`
	Message string `json:"message"`
}

// Display renders the entry as a single human-readable line.
func (e LogEntry) Display() string {
	switch e.Level {
	case LevelSuccess:
		return markerSuccess + " " + e.Message
	case LevelFailure:
		return markerFailure + " " + e.Message
	default:
		return e.Message
	}
}

// StartLine is the marker line opening every run log.
func StartLine() LogEntry {
	return LogEntry{Level: LevelInfo, Message: markerStart + " Execution Started"}
}

// CompletionLine is the marker line closing a normally completed run log.
func CompletionLine() LogEntry {
	return LogEntry{Level: LevelInfo, Message: markerCompletion + " Workflow Completed"}
}
