package stepwise

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestUsageAdd(t *testing.T) {
	a := Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15, CachedInputTokens: 2}
	b := Usage{InputTokens: 3, OutputTokens: 4, TotalTokens: 7, ReasoningTokens: 1, CacheWriteTokens: 6}

	assert.Equal(t, Usage{
		InputTokens:       13,
		OutputTokens:      9,
		TotalTokens:       22,
		CachedInputTokens: 2,
		CacheWriteTokens:  6,
		ReasoningTokens:   1,
	}, a.Add(b))
}

func TestSumUsage_Empty(t *testing.T) {
	assert.Equal(t, Usage{}, SumUsage(nil))
}

func TestSumUsage_Property(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("sum equals per-field totals", prop.ForAll(
		func(in, out []int) bool {
			n := min(len(in), len(out))
			steps := make([]Step, n)
			var wantIn, wantOut int
			for i := range n {
				steps[i].Usage = Usage{InputTokens: in[i], OutputTokens: out[i], TotalTokens: in[i] + out[i]}
				wantIn += in[i]
				wantOut += out[i]
			}
			total := SumUsage(steps)
			return total.InputTokens == wantIn &&
				total.OutputTokens == wantOut &&
				total.TotalTokens == wantIn+wantOut
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
		gen.SliceOf(gen.IntRange(0, 100000)),
	))

	properties.TestingRun(t)
}
