package stepwise

import "strings"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// PartType is the discriminant of a ContentPart.
type PartType string

const (
	PartText             PartType = "text"
	PartReasoning        PartType = "reasoning"
	PartSource           PartType = "source"
	PartFile             PartType = "file"
	PartToolCall         PartType = "tool-call"
	PartToolResult       PartType = "tool-result"
	PartToolError        PartType = "tool-error"
	PartApprovalRequest  PartType = "tool-approval-request"
	PartApprovalResponse PartType = "tool-approval-response"
)

// ContentPart is a single item of message or step content.
// Exactly one payload field is set, selected by Type. Text is used by the
// text and reasoning variants.
type ContentPart struct {
	Type PartType `json:"type"`

	Text             string            `json:"text,omitempty"`
	Source           *Source           `json:"source,omitempty"`
	File             *File             `json:"file,omitempty"`
	ToolCall         *ToolCall         `json:"toolCall,omitempty"`
	ToolResult       *ToolResult       `json:"toolResult,omitempty"`
	ToolError        *ToolError        `json:"toolError,omitempty"`
	ApprovalRequest  *ApprovalRequest  `json:"approvalRequest,omitempty"`
	ApprovalResponse *ApprovalResponse `json:"approvalResponse,omitempty"`

	// ProviderMetadata carries provider-specific data attached to the part.
	ProviderMetadata map[string]any `json:"providerMetadata,omitempty"`
}

// Source is a citation produced by the model.
type Source struct {
	ID         string `json:"id"`
	SourceType string `json:"sourceType"` // "url" or "document"
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	MediaType  string `json:"mediaType,omitempty"`
}

// File is binary content, either inline (Base64) or referenced by URL.
type File struct {
	MediaType string `json:"mediaType"`
	Base64    string `json:"base64,omitempty"`
	URL       string `json:"url,omitempty"`
	Name      string `json:"name,omitempty"`
}

// NewTextPart creates a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// NewReasoningPart creates a reasoning content part.
func NewReasoningPart(text string) ContentPart {
	return ContentPart{Type: PartReasoning, Text: text}
}

// NewFilePart creates a file part from base64 data.
func NewFilePart(base64Data, mediaType string) ContentPart {
	return ContentPart{Type: PartFile, File: &File{MediaType: mediaType, Base64: base64Data}}
}

// NewFileURLPart creates a file part referencing a URL.
func NewFileURLPart(url, mediaType string) ContentPart {
	return ContentPart{Type: PartFile, File: &File{MediaType: mediaType, URL: url}}
}

// NewToolCallPart wraps a tool call.
func NewToolCallPart(call ToolCall) ContentPart {
	return ContentPart{Type: PartToolCall, ToolCall: &call}
}

// NewToolResultPart wraps a tool result.
func NewToolResultPart(result ToolResult) ContentPart {
	return ContentPart{Type: PartToolResult, ToolResult: &result}
}

// NewToolErrorPart wraps a tool error.
func NewToolErrorPart(toolErr ToolError) ContentPart {
	return ContentPart{Type: PartToolError, ToolError: &toolErr}
}

// NewApprovalRequestPart wraps an approval request.
func NewApprovalRequestPart(req ApprovalRequest) ContentPart {
	return ContentPart{Type: PartApprovalRequest, ApprovalRequest: &req}
}

// NewApprovalResponsePart wraps an approval response.
func NewApprovalResponsePart(resp ApprovalResponse) ContentPart {
	return ContentPart{Type: PartApprovalResponse, ApprovalResponse: &resp}
}

// Message represents a single message in a conversation.
type Message struct {
	// ID is an optional unique identifier for the message.
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	// Parts holds structured content. When set, Content is treated as an
	// additional leading text part by Contents.
	Parts []ContentPart `json:"parts,omitempty"`
}

// NewUserMessage creates a user message with plain text content.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewToolMessage creates a tool message holding results, errors or approval
// responses.
func NewToolMessage(parts ...ContentPart) Message {
	return Message{Role: RoleTool, Parts: parts}
}

// ApprovalMessage builds the tool message a caller sends back to resolve
// pending approval requests.
func ApprovalMessage(responses ...ApprovalResponse) Message {
	parts := make([]ContentPart, len(responses))
	for i, r := range responses {
		parts[i] = NewApprovalResponsePart(r)
	}
	return NewToolMessage(parts...)
}

// GenerateMessageID creates a unique message identifier.
func GenerateMessageID() string {
	return "msg-" + NewID()
}

// HasParts returns true if the message has structured content parts.
func (m Message) HasParts() bool {
	return len(m.Parts) > 0
}

// Contents returns the message content as parts, folding Content into a
// leading text part.
func (m Message) Contents() []ContentPart {
	if m.Content == "" {
		return m.Parts
	}
	parts := make([]ContentPart, 0, len(m.Parts)+1)
	parts = append(parts, NewTextPart(m.Content))
	return append(parts, m.Parts...)
}

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	return JoinText(m.Contents())
}

// JoinText concatenates all text parts.
func JoinText(parts []ContentPart) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Type == PartText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// CloneMessages returns a copy of msgs that shares no part slices with the
// input.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m
		if m.Parts != nil {
			out[i].Parts = append([]ContentPart(nil), m.Parts...)
		}
	}
	return out
}
