package openai

import (
	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

func convertTools(tools []ai.ToolDefinition) []sdk.ChatCompletionToolParam {
	result := make([]sdk.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		result[i] = sdk.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: sdk.String(t.Description),
				Parameters:  shared.FunctionParameters(convert.Schema(t.Parameters)),
			},
		}
	}
	return result
}

func convertToolChoice(choice ai.ToolChoice) sdk.ChatCompletionToolChoiceOptionUnionParam {
	if name, ok := choice.Tool(); ok {
		return sdk.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &sdk.ChatCompletionNamedToolChoiceParam{
				Function: sdk.ChatCompletionNamedToolChoiceFunctionParam{Name: name},
			},
		}
	}
	mode := "auto"
	switch choice {
	case ai.ToolChoiceNone:
		mode = "none"
	case ai.ToolChoiceRequired:
		mode = "required"
	}
	return sdk.ChatCompletionToolChoiceOptionUnionParam{OfAuto: sdk.String(mode)}
}

// schemaFormat requests strict json_schema output.
func schemaFormat(rs *ai.ResponseSchema) sdk.ChatCompletionNewParamsResponseFormatUnion {
	schema := convert.Schema(rs.Schema)
	closeObjects(schema)

	name := rs.Name
	if name == "" {
		name = "response_schema"
	}
	return sdk.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &sdk.ResponseFormatJSONSchemaParam{
			Type: "json_schema",
			JSONSchema: sdk.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        name,
				Description: sdk.String(rs.Description),
				Schema:      schema,
				Strict:      sdk.Bool(true),
			},
		},
	}
}

// closeObjects sets additionalProperties: false on every object schema, which
// strict mode requires.
func closeObjects(schema map[string]any) {
	if schema == nil {
		return
	}
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if m, ok := p.(map[string]any); ok {
				closeObjects(m)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		closeObjects(items)
	}
}
