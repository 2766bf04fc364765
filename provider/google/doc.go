// Package google implements [stepwise.LanguageModel] on Gemini through the
// Google GenAI SDK, against either the Gemini API or Vertex AI.
//
// # Backends
//
// The Gemini API authenticates with an API key (GEMINI_API_KEY or
// GOOGLE_API_KEY when WithAPIKey is not given):
//
//	model, err := google.New(ctx, google.WithModel(google.Gemini25Flash))
//
// Vertex AI uses Application Default Credentials and reports "vertex" as its
// provider:
//
//	model, err := google.New(ctx, google.WithVertex("my-project", "us-central1"))
//
// # Features
//
//   - Text and image input (inline base64 or gs:// URIs)
//   - Function calling with tool choice, including a forced function
//   - Thinking summaries, with thought signatures replayed on later steps
//   - Structured output through a response schema
//
// Thinking is requested per call with the "thinking_budget" provider option.
package google
