package bedrock

// Cross-region inference profile identifiers.
const (
	ClaudeSonnet45 = "us.anthropic.claude-sonnet-4-5-20250929-v1:0"
	ClaudeHaiku45  = "us.anthropic.claude-haiku-4-5-20251001-v1:0"
	ClaudeOpus45   = "us.anthropic.claude-opus-4-5-20251101-v1:0"
	NovaPro        = "us.amazon.nova-pro-v1:0"
	NovaLite       = "us.amazon.nova-lite-v1:0"

	// DefaultModel is the recommended default model.
	DefaultModel = ClaudeSonnet45
)

// DefaultMaxTokens is the completion cap used when a call sets none.
const DefaultMaxTokens = 4096
