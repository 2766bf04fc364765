package google

import (
	"encoding/json"

	"google.golang.org/genai"

	ai "github.com/spetersoncode/stepwise"
)

func convertTools(tools []ai.ToolDefinition) []*genai.Tool {
	funcs := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		funcs[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  convertSchema(t.Parameters),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: funcs}}
}

func convertToolChoice(choice ai.ToolChoice) *genai.ToolConfig {
	fc := &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto}
	if name, ok := choice.Tool(); ok {
		fc = &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAny, AllowedFunctionNames: []string{name}}
	} else {
		switch choice {
		case ai.ToolChoiceNone:
			fc.Mode = genai.FunctionCallingConfigModeNone
		case ai.ToolChoiceRequired:
			fc.Mode = genai.FunctionCallingConfigModeAny
		}
	}
	return &genai.ToolConfig{FunctionCallingConfig: fc}
}

// convertSchema converts a JSON Schema document to the GenAI schema subset.
func convertSchema(raw json.RawMessage) *genai.Schema {
	if len(raw) == 0 {
		return nil
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil
	}
	return schemaObject(schema)
}

var schemaTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

func schemaObject(schema map[string]any) *genai.Schema {
	result := &genai.Schema{}
	switch t := schema["type"].(type) {
	case string:
		result.Type = schemaTypes[t]
	case []any:
		// ["string", "null"] is how nullable fields are spelled.
		for _, v := range t {
			if s, _ := v.(string); s == "null" {
				result.Nullable = genai.Ptr(true)
			} else if s != "" {
				result.Type = schemaTypes[s]
			}
		}
	}
	if desc, ok := schema["description"].(string); ok {
		result.Description = desc
	}
	if enum, ok := schema["enum"].([]any); ok {
		for _, e := range enum {
			if s, ok := e.(string); ok {
				result.Enum = append(result.Enum, s)
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		result.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if m, ok := p.(map[string]any); ok {
				result.Properties[name] = schemaObject(m)
			}
		}
	}
	if required, ok := schema["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				result.Required = append(result.Required, s)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		result.Items = schemaObject(items)
	}
	if result.Type == "" && result.Properties != nil {
		result.Type = genai.TypeObject
	}
	return result
}
