package bedrock

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

// jsonResponseToolName is the synthetic tool used for structured output.
const jsonResponseToolName = "json_response"

// maxToolNameLen is the longest tool name Bedrock accepts.
const maxToolNameLen = 64

// sanitizeToolName maps a tool name onto [a-zA-Z0-9_-]{1,64}. Long names are
// truncated with a stable hash suffix so distinct names stay distinct.
func sanitizeToolName(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) <= maxToolNameLen {
		return s
	}
	sum := sha256.Sum256([]byte(name))
	suffix := hex.EncodeToString(sum[:])[:8]
	return s[:maxToolNameLen-len(suffix)-1] + "_" + suffix
}

// toolNames translates between tool names and their provider-visible forms
// for one request.
type toolNames struct {
	out map[string]string
	in  map[string]string
}

func newToolNames(tools []ai.ToolDefinition) *toolNames {
	n := &toolNames{out: map[string]string{}, in: map[string]string{}}
	for _, t := range tools {
		n.add(t.Name)
	}
	n.add(jsonResponseToolName)
	return n
}

func (n *toolNames) add(name string) string {
	if s, ok := n.out[name]; ok {
		return s
	}
	s := sanitizeToolName(name)
	n.out[name] = s
	n.in[s] = name
	return s
}

// provider returns the provider-visible name, registering unknown names so
// replayed calls of since-removed tools still encode.
func (n *toolNames) provider(name string) string { return n.add(name) }

// original maps a provider name back, falling back to the name itself.
func (n *toolNames) original(name string) string {
	if o, ok := n.in[name]; ok {
		return o
	}
	return name
}

func toolSpec(name, description string, schema map[string]any) brtypes.Tool {
	spec := brtypes.ToolSpecification{
		Name:        aws.String(name),
		InputSchema: &brtypes.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)},
	}
	if description != "" {
		spec.Description = aws.String(description)
	}
	return &brtypes.ToolMemberToolSpec{Value: spec}
}

func toolConfig(options *ai.Options, names *toolNames) *brtypes.ToolConfiguration {
	var tools []brtypes.Tool
	for _, t := range options.Tools {
		tools = append(tools, toolSpec(names.provider(t.Name), t.Description, convert.Schema(t.Parameters)))
	}
	choice := options.ToolChoice
	if rs := options.ResponseSchema; rs != nil {
		description := "Respond with the final answer as structured JSON"
		if rs.Description != "" {
			description = rs.Description
		}
		tools = append(tools, toolSpec(jsonResponseToolName, description, convert.Schema(rs.Schema)))
		if len(options.Tools) == 0 {
			choice = ai.SpecificTool(jsonResponseToolName)
		}
	}
	if len(tools) == 0 {
		return nil
	}

	cfg := &brtypes.ToolConfiguration{Tools: tools}
	if name, ok := choice.Tool(); ok {
		cfg.ToolChoice = &brtypes.ToolChoiceMemberTool{Value: brtypes.SpecificToolChoice{Name: aws.String(names.provider(name))}}
		return cfg
	}
	switch choice {
	case ai.ToolChoiceRequired:
		cfg.ToolChoice = &brtypes.ToolChoiceMemberAny{Value: brtypes.AnyToolChoice{}}
	case ai.ToolChoiceAuto:
		cfg.ToolChoice = &brtypes.ToolChoiceMemberAuto{Value: brtypes.AutoToolChoice{}}
	}
	// Converse has no "none" choice; the model decides.
	return cfg
}
