package store

import (
	"context"
	"encoding/json"
	"sync"

	ai "github.com/spetersoncode/stepwise"
)

// MessageStore manages conversation history with persistence support.
type MessageStore struct {
	mu       sync.RWMutex
	messages []ai.Message
	adapter  Adapter
}

// NewMessageStore creates a new MessageStore with the given adapter.
// If adapter is nil, a default in-memory adapter is used.
func NewMessageStore(adapter Adapter) *MessageStore {
	if adapter == nil {
		adapter = NewMemoryAdapter()
	}
	return &MessageStore{
		messages: make([]ai.Message, 0),
		adapter:  adapter,
	}
}

// NewMessageStoreFrom creates a MessageStore initialized with existing messages.
func NewMessageStoreFrom(messages []ai.Message, adapter Adapter) *MessageStore {
	ms := NewMessageStore(adapter)
	ms.messages = append(ms.messages, ai.CloneMessages(messages)...)
	return ms
}

// Messages returns a copy of all messages.
func (m *MessageStore) Messages() []ai.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ai.CloneMessages(m.messages)
}

// Append adds messages to the store. The store keeps its own copy of each
// message's parts.
func (m *MessageStore) Append(msgs ...ai.Message) {
	if len(msgs) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, ai.CloneMessages(msgs)...)
}

// Len returns the number of messages.
func (m *MessageStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Clear removes all messages.
func (m *MessageStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = make([]ai.Message, 0)
}

// Last returns the last n messages. If n > Len(), returns all messages.
func (m *MessageStore) Last(n int) []ai.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	start := max(len(m.messages)-n, 0)
	return ai.CloneMessages(m.messages[start:])
}

// Sync persists the messages to the adapter under the given key.
func (m *MessageStore) Sync(ctx context.Context, key string) error {
	m.mu.RLock()
	raw, err := json.Marshal(m.messages)
	m.mu.RUnlock()
	if err != nil {
		return &SerializationError{Key: key, Err: err}
	}
	return m.adapter.Set(ctx, key, raw)
}

// Reload replaces the messages with those stored under key.
func (m *MessageStore) Reload(ctx context.Context, key string) error {
	raw, ok, err := m.adapter.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrKeyNotFound
	}

	var messages []ai.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return &SerializationError{Key: key, Err: err}
	}
	restoreOutputs(messages)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = messages
	return nil
}

// Adapter returns the underlying adapter.
func (m *MessageStore) Adapter() Adapter {
	return m.adapter
}

// restoreOutputs turns tool message outputs decoded as plain maps back into
// ai.ToolOutput values.
func restoreOutputs(messages []ai.Message) {
	for i := range messages {
		if messages[i].Role != ai.RoleTool {
			continue
		}
		for j := range messages[i].Parts {
			res := messages[i].Parts[j].ToolResult
			if res == nil {
				continue
			}
			obj, ok := res.Output.(map[string]any)
			if !ok {
				continue
			}
			typ, ok := obj["type"].(string)
			if !ok {
				continue
			}
			out := ai.ToolOutput{Type: ai.OutputType(typ), Value: obj["value"]}
			out.Reason, _ = obj["reason"].(string)
			res.Output = out
		}
	}
}
