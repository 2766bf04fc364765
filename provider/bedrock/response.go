package bedrock

import (
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

var stopReasons = map[string]ai.FinishReason{
	string(brtypes.StopReasonEndTurn):             ai.FinishStop,
	string(brtypes.StopReasonStopSequence):        ai.FinishStop,
	string(brtypes.StopReasonMaxTokens):           ai.FinishLength,
	string(brtypes.StopReasonToolUse):             ai.FinishToolCalls,
	string(brtypes.StopReasonContentFiltered):     ai.FinishContentFilter,
	string(brtypes.StopReasonGuardrailIntervened): ai.FinishContentFilter,
}

func translateResponse(out *bedrockruntime.ConverseOutput, names *toolNames, structured bool) *ai.Response {
	resp := &ai.Response{
		RawFinishReason: string(out.StopReason),
		FinishReason:    convert.FinishReason(string(out.StopReason), stopReasons),
		Metadata:        ai.ResponseMetadata{Timestamp: time.Now()},
	}
	if u := out.Usage; u != nil {
		resp.Usage = ai.Usage{
			InputTokens:       int(aws.ToInt32(u.InputTokens)),
			OutputTokens:      int(aws.ToInt32(u.OutputTokens)),
			TotalTokens:       int(aws.ToInt32(u.TotalTokens)),
			CachedInputTokens: int(aws.ToInt32(u.CacheReadInputTokens)),
			CacheWriteTokens:  int(aws.ToInt32(u.CacheWriteInputTokens)),
		}
	}

	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return resp
	}
	calls := 0
	for _, block := range msg.Value.Content {
		switch v := block.(type) {
		case *brtypes.ContentBlockMemberText:
			if v.Value != "" {
				resp.Content = append(resp.Content, ai.NewTextPart(v.Value))
			}
		case *brtypes.ContentBlockMemberReasoningContent:
			if r, ok := v.Value.(*brtypes.ReasoningContentBlockMemberReasoningText); ok {
				part := ai.NewReasoningPart(aws.ToString(r.Value.Text))
				if sig := aws.ToString(r.Value.Signature); sig != "" {
					part.ProviderMetadata = map[string]any{"signature": sig}
				}
				resp.Content = append(resp.Content, part)
			}
		case *brtypes.ContentBlockMemberToolUse:
			name := names.original(aws.ToString(v.Value.Name))
			args := decodeDocument(v.Value.Input)
			if structured && name == jsonResponseToolName {
				resp.Content = append(resp.Content, ai.NewTextPart(args))
				continue
			}
			calls++
			resp.Content = append(resp.Content, ai.NewToolCallPart(ai.ToolCall{
				ID:        aws.ToString(v.Value.ToolUseId),
				Name:      name,
				Arguments: args,
			}))
		}
	}
	if resp.FinishReason == ai.FinishToolCalls && calls == 0 {
		resp.FinishReason = ai.FinishStop
	}
	return resp
}

func decodeDocument(doc document.Interface) string {
	if doc == nil {
		return "{}"
	}
	data, err := doc.MarshalSmithyDocument()
	if err != nil || len(data) == 0 || !json.Valid(data) {
		return "{}"
	}
	return string(data)
}
