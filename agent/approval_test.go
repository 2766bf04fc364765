package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deleteArgs struct {
	Path string `json:"path" jsonschema:"required"`
}

func deleteTool(counter *atomic.Int32, deleted *string, opts ...tool.Option) tool.Tool {
	opts = append([]tool.Option{tool.RequireApproval()}, opts...)
	return tool.Func("delete", "Delete a file", func(ctx context.Context, args deleteArgs) (any, error) {
		counter.Add(1)
		if deleted != nil {
			*deleted = args.Path
		}
		return "deleted " + args.Path, nil
	}, opts...)
}

// pendingRun runs until the delete call is waiting for approval and returns
// the conversation so far.
func pendingRun(t *testing.T, a *Agent) ([]ai.Message, ai.ApprovalRequest) {
	t.Helper()
	initial := []ai.Message{ai.NewUserMessage("clean up")}
	result, err := a.Run(context.Background(), initial)
	require.NoError(t, err)

	reqs := result.ApprovalRequests()
	require.Len(t, reqs, 1)
	return append(initial, result.ResponseMessages...), reqs[0]
}

func TestApprovalPending(t *testing.T) {
	var counter atomic.Int32
	model := newMockModel(toolCallResponse(usage(1, 1), ai.ToolCall{ID: "d1", Name: "delete", Arguments: `{"path":"a.txt"}`}))
	a := New(model, tool.NewRegistry().Add(deleteTool(&counter, nil)), isolated(),
		WithIDGenerator(ai.PrefixedIDs("id")))

	result, err := a.Run(context.Background(), nil, WithPrompt("clean up"))
	require.NoError(t, err)

	assert.Equal(t, 1, model.callCount())
	assert.Equal(t, int32(0), counter.Load())
	assert.Equal(t, ai.FinishToolCalls, result.FinishReason())
	assert.Empty(t, result.ToolResults())
	assert.Equal(t, []ai.PartType{ai.PartToolCall, ai.PartApprovalRequest}, partTypes(result.Content()))

	req := result.ApprovalRequests()[0]
	assert.NotEmpty(t, req.ApprovalID)
	assert.Equal(t, "d1", req.ToolCall.ID)

	// The request travels in the assistant message.
	require.Len(t, result.ResponseMessages, 1)
	assert.Equal(t, ai.RoleAssistant, result.ResponseMessages[0].Role)
}

func TestApprovalApproved(t *testing.T) {
	var counter atomic.Int32
	model := newMockModel(
		toolCallResponse(usage(1, 1), ai.ToolCall{ID: "d1", Name: "delete", Arguments: `{"path":"a.txt"}`}),
		textResponse("Deleted.", usage(1, 1)),
	)
	a := New(model, tool.NewRegistry().Add(deleteTool(&counter, nil)), isolated())

	msgs, req := pendingRun(t, a)
	msgs = append(msgs, ai.ApprovalMessage(ai.Approve(req.ApprovalID)))

	result, err := a.Run(context.Background(), msgs)
	require.NoError(t, err)

	assert.Equal(t, int32(1), counter.Load())
	assert.Equal(t, "Deleted.", result.Text())

	require.NotEmpty(t, result.ResponseMessages)
	toolMsg := result.ResponseMessages[0]
	assert.Equal(t, ai.RoleTool, toolMsg.Role)
	res := toolMsg.Parts[0].ToolResult
	assert.Equal(t, "d1", res.ToolCallID)
	assert.Equal(t, ai.ToolOutput{Type: ai.OutputText, Value: "deleted a.txt"}, res.Output)

	// The model sees the result on its first call.
	sent := result.Steps[0].Messages
	assert.Equal(t, toolMsg, sent[len(sent)-1])
}

func TestApprovalDenied(t *testing.T) {
	var counter atomic.Int32
	model := newMockModel(
		toolCallResponse(usage(1, 1), ai.ToolCall{ID: "d1", Name: "delete", Arguments: `{"path":"a.txt"}`}),
		textResponse("OK, not deleting.", usage(1, 1)),
	)
	a := New(model, tool.NewRegistry().Add(deleteTool(&counter, nil)), isolated())

	msgs, req := pendingRun(t, a)
	msgs = append(msgs, ai.ApprovalMessage(ai.Deny(req.ApprovalID, "keep it")))

	result, err := a.Run(context.Background(), msgs)
	require.NoError(t, err)

	assert.Equal(t, int32(0), counter.Load())
	res := result.ResponseMessages[0].Parts[0].ToolResult
	assert.Equal(t, ai.DeniedOutput("keep it"), res.Output)
	assert.True(t, res.Output.(ai.ToolOutput).IsError())
}

func TestApprovalMixedBatch(t *testing.T) {
	var counter atomic.Int32
	model := newMockModel(
		toolCallResponse(usage(1, 1),
			ai.ToolCall{ID: "d1", Name: "delete", Arguments: `{"path":"a.txt"}`},
			ai.ToolCall{ID: "d2", Name: "delete", Arguments: `{"path":"b.txt"}`},
		),
		textResponse("done", usage(1, 1)),
	)
	a := New(model, tool.NewRegistry().Add(deleteTool(&counter, nil)), isolated())

	initial := []ai.Message{ai.NewUserMessage("clean up")}
	first, err := a.Run(context.Background(), initial)
	require.NoError(t, err)
	reqs := first.ApprovalRequests()
	require.Len(t, reqs, 2)

	msgs := append(initial, first.ResponseMessages...)
	msgs = append(msgs, ai.ApprovalMessage(ai.Approve(reqs[0].ApprovalID), ai.Deny(reqs[1].ApprovalID, "")))

	result, err := a.Run(context.Background(), msgs)
	require.NoError(t, err)

	assert.Equal(t, int32(1), counter.Load())
	parts := result.ResponseMessages[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "d1", parts[0].ToolResult.ToolCallID)
	assert.Equal(t, ai.OutputText, parts[0].ToolResult.Output.(ai.ToolOutput).Type)
	assert.Equal(t, "d2", parts[1].ToolResult.ToolCallID)
	assert.Equal(t, ai.OutputExecutionDenied, parts[1].ToolResult.Output.(ai.ToolOutput).Type)
}

func TestApprovalEditedInput(t *testing.T) {
	edited := func(t *testing.T, opts ...tool.Option) (*ai.ToolResult, string, int32) {
		var counter atomic.Int32
		var deleted string
		model := newMockModel(
			toolCallResponse(usage(1, 1), ai.ToolCall{ID: "d1", Name: "delete", Arguments: `{"path":"a.txt"}`}),
			textResponse("done", usage(1, 1)),
		)
		a := New(model, tool.NewRegistry().Add(deleteTool(&counter, &deleted, opts...)), isolated())

		msgs, req := pendingRun(t, a)
		resp := ai.Approve(req.ApprovalID)
		resp.EditedInput = json.RawMessage(`{"path":"b.txt"}`)
		msgs = append(msgs, ai.ApprovalMessage(resp))

		result, err := a.Run(context.Background(), msgs)
		require.NoError(t, err)
		return result.ResponseMessages[0].Parts[0].ToolResult, deleted, counter.Load()
	}

	t.Run("editable tool runs with edited input", func(t *testing.T) {
		res, deleted, calls := edited(t, tool.Editable())
		assert.Equal(t, int32(1), calls)
		assert.Equal(t, "b.txt", deleted)
		assert.Equal(t, map[string]any{"path": "b.txt"}, res.Input)
	})

	t.Run("non-editable tool rejects edits", func(t *testing.T) {
		res, _, calls := edited(t)
		assert.Equal(t, int32(0), calls)
		out := res.Output.(ai.ToolOutput)
		assert.Equal(t, ai.OutputErrorText, out.Type)
		assert.Contains(t, out.Value, "does not accept edited input")
	})
}

func TestApprovalErrors(t *testing.T) {
	call := ai.ToolCall{ID: "d1", Name: "delete", Arguments: `{"path":"a.txt"}`}
	assistant := ai.Message{Role: ai.RoleAssistant, Parts: []ai.ContentPart{
		ai.NewToolCallPart(call),
		ai.NewApprovalRequestPart(ai.ApprovalRequest{ApprovalID: "ap1", ToolCall: call}),
	}}

	t.Run("unknown approval id", func(t *testing.T) {
		model := newMockModel()
		var counter atomic.Int32
		a := New(model, tool.NewRegistry().Add(deleteTool(&counter, nil)), isolated())

		msgs := []ai.Message{ai.NewUserMessage("x"), assistant, ai.ApprovalMessage(ai.Approve("nope"))}
		_, err := a.Run(context.Background(), msgs)

		var invalid *ai.InvalidToolApprovalError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "nope", invalid.ApprovalID)
		assert.Equal(t, 0, model.callCount())
	})

	t.Run("missing tool call", func(t *testing.T) {
		orphan := ai.Message{Role: ai.RoleAssistant, Parts: []ai.ContentPart{
			ai.NewApprovalRequestPart(ai.ApprovalRequest{ApprovalID: "ap1", ToolCall: call}),
		}}
		var counter atomic.Int32
		a := New(newMockModel(), tool.NewRegistry().Add(deleteTool(&counter, nil)), isolated())

		_, err := a.Run(context.Background(), []ai.Message{orphan, ai.ApprovalMessage(ai.Approve("ap1"))})

		var notFound *ai.ToolCallNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "d1", notFound.ToolCallID)
	})

	t.Run("already answered call is skipped", func(t *testing.T) {
		var counter atomic.Int32
		a := New(newMockModel(), tool.NewRegistry().Add(deleteTool(&counter, nil)), isolated())

		answered := ai.NewToolMessage(
			ai.NewToolResultPart(ai.ToolResult{ToolCallID: "d1", ToolName: "delete", Output: ai.OutputOf("done")}),
			ai.NewApprovalResponsePart(ai.Approve("ap1")),
		)
		_, err := a.Run(context.Background(), []ai.Message{assistant, answered})
		require.NoError(t, err)
		assert.Equal(t, int32(0), counter.Load())
	})
}

func TestApprovalPredicate(t *testing.T) {
	var counter atomic.Int32
	guarded := deleteTool(&counter, nil, tool.WithApproval(tool.ApproveIf(func(args deleteArgs) bool {
		return args.Path == "/"
	})))
	model := newMockModel(toolCallResponse(usage(1, 1),
		ai.ToolCall{ID: "1", Name: "delete", Arguments: `{"path":"tmp.txt"}`},
		ai.ToolCall{ID: "2", Name: "delete", Arguments: `{"path":"/"}`},
	))
	a := New(model, tool.NewRegistry().Add(guarded), isolated())

	result, err := a.Run(context.Background(), nil, WithPrompt("go"))
	require.NoError(t, err)

	assert.Equal(t, int32(1), counter.Load())
	assert.Len(t, result.ToolResults(), 1)
	reqs := result.ApprovalRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "2", reqs[0].ToolCall.ID)
	// One call is still pending, so the run halts.
	assert.Equal(t, 1, model.callCount())
}
