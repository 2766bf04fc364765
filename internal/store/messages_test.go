package store

import (
	"context"
	"sync"
	"testing"

	ai "github.com/spetersoncode/stepwise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStore_Append(t *testing.T) {
	ms := NewMessageStore(nil)
	assert.Equal(t, 0, ms.Len())

	ms.Append(ai.NewUserMessage("Hello"))
	assert.Equal(t, 1, ms.Len())

	ms.Append(
		ai.Message{Role: ai.RoleAssistant, Content: "Hi there"},
		ai.NewUserMessage("How are you?"),
	)
	assert.Equal(t, 3, ms.Len())

	ms.Append()
	assert.Equal(t, 3, ms.Len())
}

func TestMessageStore_Copies(t *testing.T) {
	parts := []ai.ContentPart{ai.NewTextPart("a")}
	ms := NewMessageStore(nil)
	ms.Append(ai.Message{Role: ai.RoleAssistant, Parts: parts})

	parts[0] = ai.NewTextPart("mutated")
	assert.Equal(t, "a", ms.Messages()[0].Parts[0].Text)

	got := ms.Messages()
	got[0].Parts[0] = ai.NewTextPart("changed")
	assert.Equal(t, "a", ms.Messages()[0].Parts[0].Text)
}

func TestMessageStore_Last(t *testing.T) {
	ms := NewMessageStoreFrom([]ai.Message{
		ai.NewUserMessage("1"),
		ai.NewUserMessage("2"),
		ai.NewUserMessage("3"),
	}, nil)

	assert.Nil(t, ms.Last(0))
	last := ms.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "2", last[0].Content)
	assert.Len(t, ms.Last(10), 3)

	ms.Clear()
	assert.Empty(t, ms.Messages())
}

func TestMessageStore_Concurrent(t *testing.T) {
	ms := NewMessageStore(nil)
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			ms.Append(ai.NewUserMessage("x"))
			_ = ms.Messages()
		})
	}
	wg.Wait()
	assert.Equal(t, 50, ms.Len())
}

func TestMessageStore_SyncReload(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()

	ms := NewMessageStore(adapter)
	ms.Append(
		ai.NewUserMessage("delete it"),
		ai.Message{Role: ai.RoleAssistant, Parts: []ai.ContentPart{
			ai.NewToolCallPart(ai.ToolCall{ID: "1", Name: "delete", Arguments: `{}`}),
		}},
		ai.NewToolMessage(ai.NewToolResultPart(ai.ToolResult{
			ToolCallID: "1", ToolName: "delete", Output: ai.DeniedOutput("no"),
		})),
	)
	require.NoError(t, ms.Sync(ctx, "session"))

	restored := NewMessageStore(adapter)
	require.NoError(t, restored.Reload(ctx, "session"))
	msgs := restored.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "delete it", msgs[0].Content)
	assert.Equal(t, ai.DeniedOutput("no"), msgs[2].Parts[0].ToolResult.Output)

	assert.ErrorIs(t, restored.Reload(ctx, "missing"), ErrKeyNotFound)
}

func TestMessageStore_ReloadCorrupt(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()
	require.NoError(t, adapter.Set(ctx, "bad", []byte("{")))

	err := NewMessageStore(adapter).Reload(ctx, "bad")
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "bad", serr.Key)
}
