package openai

// Model identifiers last verified: December 14, 2025
// Source: https://platform.openai.com/docs/models

const (
	// GPT-5.2 Series (Latest - December 2025)
	GPT52    = "gpt-5.2"     // Flagship model
	GPT52Pro = "gpt-5.2-pro" // Enhanced reasoning

	// GPT-5.1 Series
	GPT51      = "gpt-5.1"
	GPT51Mini  = "gpt-5.1-mini"
	GPT51Codex = "gpt-5.1-codex" // Optimized for code

	// GPT-5 Series
	GPT5     = "gpt-5"
	GPT5Mini = "gpt-5-mini"
	GPT5Nano = "gpt-5-nano"

	// O-Series Reasoning Models
	O3     = "o3"
	O3Mini = "o3-mini"
	O4Mini = "o4-mini"

	// DefaultModel is the recommended default model.
	DefaultModel = GPT52
)
