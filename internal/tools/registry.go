package tools

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

var (
	// ErrUnknownTool is returned when dispatch cannot find the named tool.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool is returned when a name is registered twice. This
	// is a registration-time failure and fatal to actor initialization:
	// a misconfigured tool set must never serve partial functionality.
	ErrDuplicateTool = errors.New("duplicate tool name")
)

var toolNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry maps operation names to descriptors. Registration happens at
// actor initialization only; lookups afterwards are O(1) and read-locked.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Descriptor
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Descriptor)}
}

// Register adds a descriptor. It fails fast on a duplicate name or a
// malformed descriptor and leaves the registry unchanged on failure.
func (r *Registry) Register(d Descriptor) error {
	if !toolNamePattern.MatchString(d.Name) {
		return fmt.Errorf("tool name %q is not snake_case", d.Name)
	}
	if d.Schema == nil {
		return fmt.Errorf("tool %s: schema is required", d.Name)
	}
	if d.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
	}
	r.tools[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns a descriptor by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
