package stepwise

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolChoice(t *testing.T) {
	assert.Equal(t, ToolChoice("auto"), ToolChoiceAuto)
	assert.Equal(t, ToolChoice("none"), ToolChoiceNone)
	assert.Equal(t, ToolChoice("required"), ToolChoiceRequired)

	name, ok := SpecificTool("weather").Tool()
	assert.True(t, ok)
	assert.Equal(t, "weather", name)

	_, ok = ToolChoiceAuto.Tool()
	assert.False(t, ok)
	_, ok = ToolChoice("tool:").Tool()
	assert.False(t, ok)
}

func TestNewToolError(t *testing.T) {
	cause := errors.New("boom")
	call := ToolCall{ID: "c1", Name: "weather", Input: map[string]any{"city": "Paris"}, Dynamic: true}

	te := NewToolError(call, cause)

	assert.Equal(t, "c1", te.ToolCallID)
	assert.Equal(t, "weather", te.ToolName)
	assert.Equal(t, "boom", te.Error())
	assert.True(t, te.Dynamic)
	assert.True(t, errors.Is(te, cause))
}

func TestOutputOf(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected ToolOutput
	}{
		{"string is text", "sunny", ToolOutput{Type: OutputText, Value: "sunny"}},
		{"struct is json", map[string]int{"temp": 20}, ToolOutput{Type: OutputJSON, Value: map[string]int{"temp": 20}}},
		{"output passes through", DeniedOutput("no"), ToolOutput{Type: OutputExecutionDenied, Reason: "no"}},
		{"nil pointer", (*ToolOutput)(nil), ToolOutput{Type: OutputJSON}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputOf(tt.value))
		})
	}
}

func TestToolOutput(t *testing.T) {
	t.Run("error kinds", func(t *testing.T) {
		assert.True(t, DeniedOutput("").IsError())
		assert.True(t, ErrorOutputOf(ToolError{Message: "x"}).IsError())
		assert.False(t, OutputOf("ok").IsError())
	})

	t.Run("denied without reason has a default message", func(t *testing.T) {
		assert.Equal(t, "Tool execution denied.", DeniedOutput("").String())
		assert.Equal(t, "nope", DeniedOutput("nope").String())
	})
}

func TestEncodeOutput(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		s, err := EncodeOutput("sunny")
		require.NoError(t, err)
		assert.Equal(t, "sunny", s)
	})

	t.Run("json", func(t *testing.T) {
		s, err := EncodeOutput(map[string]int{"temp": 20})
		require.NoError(t, err)
		assert.JSONEq(t, `{"temp":20}`, s)
	})

	t.Run("unencodable", func(t *testing.T) {
		_, err := EncodeOutput(func() {})
		assert.ErrorIs(t, err, errUnknownOutput)
	})
}
