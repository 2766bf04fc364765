package google

// Model identifiers last verified: December 14, 2025
// Source: https://ai.google.dev/gemini-api/docs/models

const (
	// Gemini 3.0 (Latest - November 2025)
	Gemini3Pro = "gemini-3.0-pro"

	// Gemini 2.5 Series
	Gemini25Pro       = "gemini-2.5-pro"
	Gemini25Flash     = "gemini-2.5-flash"
	Gemini25FlashLite = "gemini-2.5-flash-lite"

	// DefaultModel is the recommended default model.
	DefaultModel = Gemini25Flash
)
