package anthropic

import (
	sdk "github.com/anthropics/anthropic-sdk-go"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

// jsonResponseToolName is the synthetic tool used for structured output.
const jsonResponseToolName = "json_response"

func convertTools(tools []ai.ToolDefinition) []sdk.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]sdk.ToolUnionParam, len(tools))
	for i, t := range tools {
		result[i] = toolParam(t.Name, t.Description, convert.Schema(t.Parameters))
	}
	return result
}

func toolParam(name, description string, schema map[string]any) sdk.ToolUnionParam {
	var required []string
	if req, ok := schema["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required = append(required, s)
			}
		}
	}
	return sdk.ToolUnionParam{
		OfTool: &sdk.ToolParam{
			Name:        name,
			Description: sdk.String(description),
			InputSchema: sdk.ToolInputSchemaParam{
				Properties: schema["properties"],
				Required:   required,
			},
		},
	}
}

func jsonTool(rs *ai.ResponseSchema) sdk.ToolUnionParam {
	description := "Respond with the final answer as structured JSON"
	if rs.Description != "" {
		description = rs.Description
	}
	return toolParam(jsonResponseToolName, description, convert.Schema(rs.Schema))
}

func convertToolChoice(choice ai.ToolChoice) sdk.ToolChoiceUnionParam {
	if name, ok := choice.Tool(); ok {
		return sdk.ToolChoiceUnionParam{OfTool: &sdk.ToolChoiceToolParam{Name: name}}
	}
	switch choice {
	case ai.ToolChoiceNone:
		return sdk.ToolChoiceUnionParam{OfNone: &sdk.ToolChoiceNoneParam{}}
	case ai.ToolChoiceRequired:
		return sdk.ToolChoiceUnionParam{OfAny: &sdk.ToolChoiceAnyParam{}}
	default:
		return sdk.ToolChoiceUnionParam{OfAuto: &sdk.ToolChoiceAutoParam{}}
	}
}
