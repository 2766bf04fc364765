package tool

import (
	"fmt"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ai "github.com/spetersoncode/stepwise"
)

// registeredTool combines a tool with its compiled input validator.
type registeredTool struct {
	tool      Tool
	validator *ai.Validator
}

// Registry manages registered tools. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]registeredTool),
	}
}

// Register adds a tool to the registry. It compiles the tool's parameter
// schema and fails if the schema is invalid or the name is taken.
func (r *Registry) Register(t Tool) error {
	v, err := ai.CompileSchema(t.Parameters)
	if err != nil {
		return fmt.Errorf("tool: %s: %w", t.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: t.Name}
	}
	r.tools[t.Name] = registeredTool{tool: t, validator: v}
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Add registers one or more tools and returns the registry for chaining.
// Panics if any tool is already registered.
func (r *Registry) Add(tools ...Tool) *Registry {
	for _, t := range tools {
		r.MustRegister(t)
	}
	return r
}

// Unregister removes a tool from the registry.
// It is a no-op if the tool is not registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return Tool{}, false
	}
	return rt.tool, true
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].tool)
	}
	return tools
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Select returns the names of tools matching any of the patterns. Patterns
// are exact names or doublestar globs such as "fs_*". With no patterns every
// tool is selected.
func (r *Registry) Select(patterns ...string) ([]string, error) {
	names := r.Names()
	if len(patterns) == 0 {
		return names, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, &ErrInvalidPattern{Pattern: p}
		}
	}
	selected := []string{}
	for _, name := range names {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, name); ok {
				selected = append(selected, name)
				break
			}
		}
	}
	return selected, nil
}

// Definitions returns the model-facing definitions of the named tools, in
// registration order. Unknown names are ignored.
func (r *Registry) Definitions(names []string) []ai.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ai.ToolDefinition, 0, len(names))
	for _, name := range r.order {
		if slices.Contains(names, name) {
			defs = append(defs, r.tools[name].tool.Definition())
		}
	}
	return defs
}

// Parse resolves a model tool call against the registry. On success the
// returned call carries the decoded Input. An unknown tool yields
// *ai.NoSuchToolError; arguments that fail to parse or validate yield
// *ai.InvalidToolInputError. Only tools named in available may be called;
// an empty list allows none. Use ParseAny to allow every registered tool.
func (r *Registry) Parse(call ai.ToolCall, available []string) (ai.ToolCall, error) {
	r.mu.RLock()
	rt, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok || !slices.Contains(available, call.Name) {
		if available == nil {
			available = []string{}
		}
		return call, &ai.NoSuchToolError{ToolName: call.Name, AvailableTools: available}
	}

	input, err := rt.validator.Validate([]byte(call.Arguments))
	if err != nil {
		return call, &ai.InvalidToolInputError{ToolName: call.Name, ToolInput: call.Arguments, Err: err}
	}
	call.Input = input
	call.Dynamic = call.Dynamic || rt.tool.Dynamic
	return call, nil
}

// ParseAny is Parse with every registered tool available.
func (r *Registry) ParseAny(call ai.ToolCall) (ai.ToolCall, error) {
	return r.Parse(call, r.Names())
}
