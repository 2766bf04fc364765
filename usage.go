package stepwise

// Usage contains token usage information for a model call or a whole run.
type Usage struct {
	InputTokens       int `json:"inputTokens"`
	OutputTokens      int `json:"outputTokens"`
	TotalTokens       int `json:"totalTokens"`
	CachedInputTokens int `json:"cachedInputTokens,omitempty"`
	CacheWriteTokens  int `json:"cacheWriteTokens,omitempty"`
	ReasoningTokens   int `json:"reasoningTokens,omitempty"`
}

// Add returns the elementwise sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:       u.InputTokens + other.InputTokens,
		OutputTokens:      u.OutputTokens + other.OutputTokens,
		TotalTokens:       u.TotalTokens + other.TotalTokens,
		CachedInputTokens: u.CachedInputTokens + other.CachedInputTokens,
		CacheWriteTokens:  u.CacheWriteTokens + other.CacheWriteTokens,
		ReasoningTokens:   u.ReasoningTokens + other.ReasoningTokens,
	}
}

// SumUsage adds up the usage of every step.
func SumUsage(steps []Step) Usage {
	var total Usage
	for _, s := range steps {
		total = total.Add(s.Usage)
	}
	return total
}
