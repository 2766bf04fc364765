package agent

import (
	"context"
	"testing"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/telemetry"
	"github.com/spetersoncode/stepwise/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsTool(t *testing.T) {
	sub := newMockModel(textResponse("Paris is the capital.", usage(2, 3)))
	var subContext any
	researcher := New(sub, nil, isolated(),
		WithOnFinish(func(ctx context.Context, e *telemetry.RunFinishEvent) { subContext = e.Context }))

	research := AsTool("research", researcher, WithToolDescription("Research a topic"))
	assert.Equal(t, "Research a topic", research.Description)
	assert.Contains(t, string(research.Parameters), "query")

	main := newMockModel(
		toolCallResponse(usage(1, 1), ai.ToolCall{ID: "r1", Name: "research", Arguments: `{"query":"capital of France"}`}),
		textResponse("It is Paris.", usage(1, 1)),
	)
	a := New(main, tool.NewRegistry().Add(research), isolated())

	result, err := a.Run(context.Background(), nil, WithPrompt("What is the capital of France?"), WithContext("tenant-1"))
	require.NoError(t, err)

	assert.Equal(t, "It is Paris.", result.Text())
	results := result.Steps[0].ToolResults()
	require.Len(t, results, 1)
	assert.Equal(t, "Paris is the capital.", results[0].Output)
	assert.Equal(t, "capital of France", sub.messages[0][0].Content)
	assert.Equal(t, "tenant-1", subContext)
}

func TestSpecialistRegistry(t *testing.T) {
	research := New(newMockModel(), nil)
	code := New(newMockModel(), nil)

	team := NewSpecialistRegistry().
		Register("research", "Research and gather information", research, WithCapabilities("search")).
		Register("code", "Write and analyze code", code, WithCapabilities("code", "search"),
			WithSpecialistToolOptions(WithToolOptions(tool.RequireApproval())))

	t.Run("lookup", func(t *testing.T) {
		s, ok := team.Get("research")
		require.True(t, ok)
		assert.Same(t, research, s.Agent)

		_, ok = team.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, []string{"research", "code"}, team.Names())
		assert.Equal(t, 2, team.Len())
	})

	t.Run("by capability", func(t *testing.T) {
		assert.Len(t, team.ByCapability("search"), 2)
		matches := team.ByCapability("code")
		require.Len(t, matches, 1)
		assert.Equal(t, "code", matches[0].Name)
	})

	t.Run("register to tool registry", func(t *testing.T) {
		registry := tool.NewRegistry()
		require.NoError(t, team.RegisterTo(registry))
		assert.Equal(t, []string{"research", "code"}, registry.Names())

		codeTool, ok := registry.Get("code")
		require.True(t, ok)
		assert.Equal(t, "Write and analyze code", codeTool.Description)
		assert.NotNil(t, codeTool.NeedsApproval)

		assert.Error(t, team.RegisterTo(registry))
	})

	t.Run("unregister", func(t *testing.T) {
		other := NewSpecialistRegistry().Register("a", "", research).Register("b", "", code)
		other.Unregister("a")
		other.Unregister("missing")
		assert.Equal(t, []string{"b"}, other.Names())
	})
}

func TestStopConditionHelpers(t *testing.T) {
	steps := []ai.Step{
		{Content: []ai.ContentPart{ai.NewToolCallPart(ai.ToolCall{Name: "search"})}},
		{Content: []ai.ContentPart{ai.NewToolCallPart(ai.ToolCall{Name: "finish"})}},
	}

	assert.True(t, StepCountIs(2)(steps))
	assert.False(t, StepCountIs(3)(steps))
	assert.True(t, HasToolCall("finish")(steps))
	assert.False(t, HasToolCall("search")(steps))
	assert.False(t, HasToolCall("finish")(nil))
}
