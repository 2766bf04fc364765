package anthropic

// Model identifiers last verified: December 14, 2025
// Source: https://platform.claude.com/docs/en/about-claude/models/overview

const (
	// Claude 4.5 Family (Current)
	ClaudeOpus45   = "claude-opus-4-5"   // Alias - auto-updates
	ClaudeSonnet45 = "claude-sonnet-4-5" // Alias - auto-updates
	ClaudeHaiku45  = "claude-haiku-4-5"  // Alias - auto-updates

	// Pinned versions (use for production stability)
	ClaudeOpus45_20251101   = "claude-opus-4-5-20251101"
	ClaudeSonnet45_20250929 = "claude-sonnet-4-5-20250929"
	ClaudeHaiku45_20251001  = "claude-haiku-4-5-20251001"

	// DefaultModel is the recommended default model.
	DefaultModel = ClaudeSonnet45
)

// DefaultMaxTokens is the completion cap used when a call sets none; the
// Messages API requires one.
const DefaultMaxTokens = 4096
