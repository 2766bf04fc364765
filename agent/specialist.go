package agent

import (
	"slices"
	"sync"

	"github.com/spetersoncode/stepwise/tool"
)

// Specialist is a named sub-agent offered to another agent as a tool.
type Specialist struct {
	Name         string
	Description  string
	Agent        *Agent
	Capabilities []string
	// Options configure the tool built for the specialist.
	Options []ToolOption
}

// SpecialistOption configures a Specialist.
type SpecialistOption func(*Specialist)

// WithCapabilities tags the specialist for ByCapability lookups.
func WithCapabilities(caps ...string) SpecialistOption {
	return func(s *Specialist) {
		s.Capabilities = caps
	}
}

// WithSpecialistToolOptions sets the options used when the specialist is
// turned into a tool.
func WithSpecialistToolOptions(opts ...ToolOption) SpecialistOption {
	return func(s *Specialist) {
		s.Options = append(s.Options, opts...)
	}
}

// SpecialistRegistry manages a team of sub-agents in registration order.
//
// Example:
//
//	team := agent.NewSpecialistRegistry().
//	    Register("research", "Research and gather information", researchAgent).
//	    Register("code", "Write and analyze code", codeAgent)
//
//	tools := tool.NewRegistry()
//	if err := team.RegisterTo(tools); err != nil { ... }
type SpecialistRegistry struct {
	mu          sync.RWMutex
	specialists map[string]*Specialist
	order       []string
}

// NewSpecialistRegistry creates an empty specialist registry.
func NewSpecialistRegistry() *SpecialistRegistry {
	return &SpecialistRegistry{
		specialists: make(map[string]*Specialist),
	}
}

// Register adds a specialist. A specialist with the same name is replaced.
func (r *SpecialistRegistry) Register(name, description string, a *Agent, opts ...SpecialistOption) *SpecialistRegistry {
	s := &Specialist{Name: name, Description: description, Agent: a}
	for _, opt := range opts {
		opt(s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specialists[name]; !ok {
		r.order = append(r.order, name)
	}
	r.specialists[name] = s
	return r
}

// Unregister removes a specialist. It is a no-op for unknown names.
func (r *SpecialistRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specialists, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
}

// Get retrieves a specialist by name.
func (r *SpecialistRegistry) Get(name string) (*Specialist, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specialists[name]
	return s, ok
}

// Names returns the specialist names in registration order.
func (r *SpecialistRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of specialists.
func (r *SpecialistRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ByCapability returns the specialists tagged with capability.
func (r *SpecialistRegistry) ByCapability(capability string) []*Specialist {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Specialist
	for _, name := range r.order {
		s := r.specialists[name]
		if slices.Contains(s.Capabilities, capability) {
			matches = append(matches, s)
		}
	}
	return matches
}

// AsTools converts every specialist into a tool. opts apply to all of them
// after each specialist's own options.
func (r *SpecialistRegistry) AsTools(opts ...ToolOption) []tool.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]tool.Tool, 0, len(r.order))
	for _, name := range r.order {
		s := r.specialists[name]
		toolOpts := append([]ToolOption{WithToolDescription(s.Description)}, s.Options...)
		toolOpts = append(toolOpts, opts...)
		tools = append(tools, AsTool(s.Name, s.Agent, toolOpts...))
	}
	return tools
}

// RegisterTo registers every specialist as a tool in registry.
func (r *SpecialistRegistry) RegisterTo(registry *tool.Registry, opts ...ToolOption) error {
	for _, t := range r.AsTools(opts...) {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
