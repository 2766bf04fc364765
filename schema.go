package stepwise

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaBuilder provides a fluent API for refining a JSON Schema reflected
// from a Go struct. Use SchemaFor[T]() to create one.
type SchemaBuilder struct {
	schema *invopop.Schema
}

var reflector = &invopop.Reflector{
	DoNotReference:             true,
	ExpandedStruct:             true,
	RequiredFromJSONSchemaTags: true,
}

// anonReflector handles unnamed struct types, which have no definition for
// the expanded reflector to inline.
var anonReflector = &invopop.Reflector{
	DoNotReference:             true,
	RequiredFromJSONSchemaTags: true,
}

// SchemaFor creates a SchemaBuilder by reflecting on T. Field names come from
// json tags and descriptions from jsonschema tags. Fields are optional until
// marked with Required or a `jsonschema:"required"` tag.
func SchemaFor[T any]() *SchemaBuilder {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return &SchemaBuilder{schema: &invopop.Schema{Type: "object", Properties: invopop.NewProperties()}}
	}
	r := reflector
	if t.Name() == "" {
		r = anonReflector
	}
	s := r.ReflectFromType(t)
	s.Version = ""
	s.ID = ""
	if s.Properties == nil {
		s.Properties = invopop.NewProperties()
	}
	return &SchemaBuilder{schema: s}
}

// Desc sets the description for a field.
func (s *SchemaBuilder) Desc(field, description string) *SchemaBuilder {
	if prop, ok := s.schema.Properties.Get(field); ok {
		prop.Description = description
	}
	return s
}

// Required marks the specified fields as required.
func (s *SchemaBuilder) Required(fields ...string) *SchemaBuilder {
	for _, field := range fields {
		if _, ok := s.schema.Properties.Get(field); !ok {
			continue
		}
		if !slices.Contains(s.schema.Required, field) {
			s.schema.Required = append(s.schema.Required, field)
		}
	}
	return s
}

// Enum sets the allowed values for a string field.
func (s *SchemaBuilder) Enum(field string, values ...string) *SchemaBuilder {
	if prop, ok := s.schema.Properties.Get(field); ok {
		prop.Enum = make([]any, len(values))
		for i, v := range values {
			prop.Enum[i] = v
		}
	}
	return s
}

// Build generates the JSON Schema as json.RawMessage.
func (s *SchemaBuilder) Build() json.RawMessage {
	data, err := json.Marshal(s.schema)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

// Validator checks JSON documents against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document. A nil or empty schema
// compiles to a validator that accepts any JSON value.
func CompileSchema(schema json.RawMessage) (*Validator, error) {
	if len(bytes.TrimSpace(schema)) == 0 {
		return &Validator{}, nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate decodes data and validates it. It returns the decoded value, with
// numbers decoded as float64 like encoding/json.
func (v *Validator) Validate(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if v != nil && v.schema != nil {
		if err := v.schema.Validate(inst); err != nil {
			return nil, err
		}
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	return decoded, nil
}
