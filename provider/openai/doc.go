// Package openai implements [stepwise.LanguageModel] on the OpenAI Chat
// Completions API using the official Go SDK.
//
// Supported: text and image input, tool calling with tool choice, reasoning
// effort for o-series and GPT-5 models, and structured output through the
// json_schema response format in strict mode.
//
//	model := openai.New(openai.WithModel(openai.GPT5Mini))
//
// WithBaseURL points the adapter at any Chat Completions compatible server
// (Ollama, vLLM, LM Studio).
//
// Reasoning effort is set per call with a provider option:
//
//	ai.WithProviderOptions(map[string]any{"reasoning_effort": "high"})
package openai
