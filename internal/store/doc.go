// Package store holds conversation history for agent runs.
//
// [MessageStore] is an append-only, concurrency-safe message list. The agent
// uses one per run to collect response messages while tool goroutines and
// listeners read snapshots. Histories can be persisted through an [Adapter];
// [MemoryAdapter] keeps them in process and [FileAdapter] writes one JSON
// file per key, which the CLI uses for resumable sessions:
//
//	adapter, _ := store.NewFileAdapter(".stepwise/sessions")
//	history := store.NewMessageStore(adapter)
//	if err := history.Reload(ctx, "default"); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
//	    return err
//	}
//	history.Append(ai.NewUserMessage("hello"))
//	_ = history.Sync(ctx, "default")
package store
