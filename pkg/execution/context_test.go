package execution_test

import (
	"strings"
	"testing"

	"github.com/orbitflows/orbit/pkg/execution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext_IDFormat(t *testing.T) {
	t.Parallel()

	ctx := execution.NewContext("wf-1")

	assert.Equal(t, "wf-1", ctx.WorkflowID)
	assert.True(t, strings.HasPrefix(ctx.ID, "exec-"))
	assert.Len(t, ctx.ID, len("exec-")+8)

	other := execution.NewContext("wf-1")
	assert.NotEqual(t, ctx.ID, other.ID)
}

func TestContext_ContentSlot(t *testing.T) {
	t.Parallel()

	ctx := execution.NewContext("wf-1")

	assert.False(t, ctx.HasContent())
	assert.Empty(t, ctx.Content())

	ctx.SetContent("first")
	assert.True(t, ctx.HasContent())
	assert.Equal(t, "first", ctx.Content())

	// Later producers overwrite earlier ones.
	ctx.SetContent("second")
	assert.Equal(t, "second", ctx.Content())

	// An explicit empty write still counts as produced content.
	ctx.SetContent("")
	assert.True(t, ctx.HasContent())
	assert.Empty(t, ctx.Content())
}

func TestContext_DisplayLines(t *testing.T) {
	t.Parallel()

	ctx := execution.NewContext("wf-1")
	ctx.Append(execution.StartLine())
	ctx.Info("n1", "🌐 Scraper: Visiting %s...", "https://example.com")
	ctx.Success("n1", "Scraper: Found page %q", "Example")
	ctx.Failure("n2", "%s failed: %v", "slack", "status 403")
	ctx.Append(execution.CompletionLine())

	assert.Equal(t, []string{
		"🚀 Execution Started",
		"🌐 Scraper: Visiting https://example.com...",
		"✅ Scraper: Found page \"Example\"",
		"❌ slack failed: status 403",
		"🏁 Workflow Completed",
	}, ctx.DisplayLines())
}

func TestContext_EntriesCarryLevelAndStep(t *testing.T) {
	t.Parallel()

	ctx := execution.NewContext("wf-1")
	ctx.Success("node-9", "done")

	entries := ctx.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, execution.LevelSuccess, entries[0].Level)
	assert.Equal(t, "node-9", entries[0].StepID)
	assert.Equal(t, "done", entries[0].Message)
}

func TestContext_HasFailures(t *testing.T) {
	t.Parallel()

	ctx := execution.NewContext("wf-1")
	ctx.Info("n1", "visiting")
	ctx.Success("n1", "found")
	assert.False(t, ctx.HasFailures())

	ctx.Failure("n2", "slack failed")
	assert.True(t, ctx.HasFailures())
}
