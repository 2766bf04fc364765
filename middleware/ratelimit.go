package middleware

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	ai "github.com/spetersoncode/stepwise"
)

// AdaptiveRateLimiter applies an AIMD-style adaptive token bucket on top of a
// LanguageModel. It estimates the token cost of each request, blocks callers
// until capacity is available, halves its tokens-per-minute budget when the
// provider answers 429 and recovers a little after every success.
//
// One limiter is meant to be shared by all models calling the same provider
// account.
type AdaptiveRateLimiter struct {
	mu sync.Mutex

	limiter *rate.Limiter

	currentTPM   float64
	minTPM       float64
	maxTPM       float64
	recoveryRate float64
}

// NewAdaptiveRateLimiter constructs a limiter with an initial
// tokens-per-minute budget and an upper bound. When maxTPM is zero or less
// than initialTPM, it is clamped to initialTPM.
func NewAdaptiveRateLimiter(initialTPM, maxTPM float64) *AdaptiveRateLimiter {
	if initialTPM <= 0 {
		initialTPM = 60000
	}
	if maxTPM <= 0 || maxTPM < initialTPM {
		maxTPM = initialTPM
	}
	return &AdaptiveRateLimiter{
		limiter:      rate.NewLimiter(rate.Limit(initialTPM/60.0), int(initialTPM)),
		currentTPM:   initialTPM,
		minTPM:       max(initialTPM*0.1, 1),
		maxTPM:       maxTPM,
		recoveryRate: max(initialTPM*0.05, 1),
	}
}

// RateLimit returns a middleware enforcing l.
func RateLimit(l *AdaptiveRateLimiter) Middleware {
	return func(next ai.LanguageModel) ai.LanguageModel {
		return &limitedModel{LanguageModel: next, limiter: l}
	}
}

// TPM returns the current tokens-per-minute budget.
func (l *AdaptiveRateLimiter) TPM() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentTPM
}

type limitedModel struct {
	ai.LanguageModel
	limiter *AdaptiveRateLimiter
}

func (m *limitedModel) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	if err := m.limiter.wait(ctx, messages); err != nil {
		return nil, err
	}
	resp, err := m.LanguageModel.Generate(ctx, messages, opts...)
	m.limiter.observe(err)
	return resp, err
}

func (l *AdaptiveRateLimiter) wait(ctx context.Context, messages []ai.Message) error {
	l.mu.Lock()
	tokens := min(estimateTokens(messages), l.limiter.Burst())
	l.mu.Unlock()
	return l.limiter.WaitN(ctx, tokens)
}

func (l *AdaptiveRateLimiter) observe(err error) {
	switch {
	case err == nil:
		l.setTPM(l.currentBudget() + l.recoveryRate)
	case ai.StatusCodeOf(err) == 429:
		l.setTPM(l.currentBudget() * 0.5)
	}
}

func (l *AdaptiveRateLimiter) currentBudget() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentTPM
}

// setTPM updates the budget, clamped to [minTPM, maxTPM].
func (l *AdaptiveRateLimiter) setTPM(tpm float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tpm = min(max(tpm, l.minTPM), l.maxTPM)
	if tpm == l.currentTPM {
		return
	}
	l.currentTPM = tpm
	l.limiter.SetLimit(rate.Limit(tpm / 60.0))
	l.limiter.SetBurst(int(tpm))
}

// estimateTokens approximates one token per three characters of text and
// tool output, plus a fixed buffer for system prompts and provider framing.
func estimateTokens(messages []ai.Message) int {
	chars := 0
	for _, m := range messages {
		for _, p := range m.Contents() {
			switch p.Type {
			case ai.PartText, ai.PartReasoning:
				chars += len(p.Text)
			case ai.PartToolResult:
				if s, ok := p.ToolResult.Output.(string); ok {
					chars += len(s)
				} else if out, ok := p.ToolResult.Output.(ai.ToolOutput); ok {
					chars += len(out.String())
				}
			case ai.PartToolCall:
				chars += len(p.ToolCall.Arguments)
			}
		}
	}
	if chars == 0 {
		return 500
	}
	return max(chars/3, 1) + 500
}
