// Package anthropic implements [stepwise.LanguageModel] on the Anthropic
// Messages API using the official Go SDK.
//
// Supported: text and image input, tool calling with tool choice, extended
// thinking (replayed with its signature), server-side web search results and
// structured output. Structured output is requested through a synthetic
// "json_response" tool whose input becomes the response text.
//
//	model := anthropic.New(anthropic.WithModel(anthropic.ClaudeSonnet45))
//	a := agent.New(model, registry)
//
// Extended thinking is enabled per call with a provider option:
//
//	agent.WithModelOptions(ai.WithProviderOptions(map[string]any{"thinking_budget": 2048}))
package anthropic
