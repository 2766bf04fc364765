package google

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

var finishReasons = map[string]ai.FinishReason{
	string(genai.FinishReasonStop):                  ai.FinishStop,
	string(genai.FinishReasonMaxTokens):             ai.FinishLength,
	string(genai.FinishReasonSafety):                ai.FinishContentFilter,
	string(genai.FinishReasonRecitation):            ai.FinishContentFilter,
	string(genai.FinishReasonBlocklist):             ai.FinishContentFilter,
	string(genai.FinishReasonProhibitedContent):     ai.FinishContentFilter,
	string(genai.FinishReasonSPII):                  ai.FinishContentFilter,
	string(genai.FinishReasonMalformedFunctionCall): ai.FinishError,
}

func translateResponse(r *genai.GenerateContentResponse) *ai.Response {
	resp := &ai.Response{
		Metadata: ai.ResponseMetadata{
			ID:        r.ResponseID,
			ModelID:   r.ModelVersion,
			Timestamp: r.CreateTime,
		},
	}
	if u := r.UsageMetadata; u != nil {
		resp.Usage = ai.Usage{
			InputTokens:       int(u.PromptTokenCount),
			OutputTokens:      int(u.CandidatesTokenCount),
			TotalTokens:       int(u.TotalTokenCount),
			CachedInputTokens: int(u.CachedContentTokenCount),
			ReasoningTokens:   int(u.ThoughtsTokenCount),
		}
	}

	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		resp.RawFinishReason = string(r.PromptFeedback.BlockReason)
		resp.FinishReason = ai.FinishContentFilter
		return resp
	}
	if len(r.Candidates) == 0 {
		resp.FinishReason = ai.FinishUnknown
		return resp
	}

	cand := r.Candidates[0]
	resp.RawFinishReason = string(cand.FinishReason)
	resp.FinishReason = convert.FinishReason(resp.RawFinishReason, finishReasons)

	calls := 0
	if cand.Content != nil {
		for i, p := range cand.Content.Parts {
			switch {
			case p.FunctionCall != nil:
				calls++
				args, _ := json.Marshal(p.FunctionCall.Args)
				id := p.FunctionCall.ID
				if id == "" {
					id = fmt.Sprintf("call_%d_%s", i, p.FunctionCall.Name)
				}
				resp.Content = append(resp.Content, withSignature(ai.NewToolCallPart(ai.ToolCall{
					ID:        id,
					Name:      p.FunctionCall.Name,
					Arguments: string(args),
				}), p.ThoughtSignature))
			case p.Thought:
				resp.Content = append(resp.Content, withSignature(ai.NewReasoningPart(p.Text), p.ThoughtSignature))
			case p.Text != "":
				resp.Content = append(resp.Content, withSignature(ai.NewTextPart(p.Text), p.ThoughtSignature))
			}
		}
	}

	// Gemini reports STOP for function-calling turns.
	if calls > 0 && resp.FinishReason == ai.FinishStop {
		resp.FinishReason = ai.FinishToolCalls
	}
	return resp
}
