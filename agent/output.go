package agent

import (
	"encoding/json"
	"strings"

	ai "github.com/spetersoncode/stepwise"
)

// Output describes the structured output expected from the final step.
type Output interface {
	// ResponseSchema is sent to the model on every step. Nil requests plain text.
	ResponseSchema() *ai.ResponseSchema
	// Parse converts the final step's text into the output value.
	Parse(text string) (any, error)
}

type textOutput struct{}

// Text returns the final step's text unchanged.
func Text() Output { return textOutput{} }

func (textOutput) ResponseSchema() *ai.ResponseSchema { return nil }

func (textOutput) Parse(text string) (any, error) { return text, nil }

type jsonOutput[T any] struct {
	schema    json.RawMessage
	validator *ai.Validator
	err       error
}

// JSON parses the final step's text as JSON matching schema and decodes it
// into T. A nil schema is reflected from T.
func JSON[T any](schema json.RawMessage) Output {
	if schema == nil {
		schema = ai.SchemaFor[T]().Build()
	}
	v, err := ai.CompileSchema(schema)
	return &jsonOutput[T]{schema: schema, validator: v, err: err}
}

func (o *jsonOutput[T]) ResponseSchema() *ai.ResponseSchema {
	return &ai.ResponseSchema{Name: "output", Schema: o.schema}
}

func (o *jsonOutput[T]) Parse(text string) (any, error) {
	if o.err != nil {
		return nil, o.err
	}
	data := []byte(stripFence(text))
	if _, err := o.validator.Validate(data); err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// stripFence removes a surrounding markdown code fence.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
