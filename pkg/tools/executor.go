package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// Policy defines which tools are allowed or denied.
type Policy struct {
	Allowed  map[string]bool // Explicitly allowed tools
	Denied   map[string]bool // Explicitly denied tools
	AllowAll bool            // If true, allow all tools except denied
	DenyAll  bool            // If true, deny all tools except allowed
}

// NewPolicy creates a new empty policy. An empty policy denies everything.
func NewPolicy() *Policy {
	return &Policy{
		Allowed: make(map[string]bool),
		Denied:  make(map[string]bool),
	}
}

// AllowAllPolicy creates a policy that allows all tools.
func AllowAllPolicy() *Policy {
	return &Policy{
		Allowed:  make(map[string]bool),
		Denied:   make(map[string]bool),
		AllowAll: true,
	}
}

// DenyAllPolicy creates a policy that denies all tools.
func DenyAllPolicy() *Policy {
	return &Policy{
		Allowed: make(map[string]bool),
		Denied:  make(map[string]bool),
		DenyAll: true,
	}
}

// Allow explicitly allows a tool.
func (p *Policy) Allow(name string) *Policy {
	p.Allowed[name] = true
	delete(p.Denied, name)
	return p
}

// Deny explicitly denies a tool.
func (p *Policy) Deny(name string) *Policy {
	p.Denied[name] = true
	delete(p.Allowed, name)
	return p
}

// AllowGroup allows all tools in a group.
func (p *Policy) AllowGroup(registry *Registry, group string) *Policy {
	for _, name := range registry.ToolsInGroup(group) {
		p.Allow(name)
	}
	return p
}

// DenyGroup denies all tools in a group.
func (p *Policy) DenyGroup(registry *Registry, group string) *Policy {
	for _, name := range registry.ToolsInGroup(group) {
		p.Deny(name)
	}
	return p
}

// IsAllowed checks if a tool is allowed by this policy.
func (p *Policy) IsAllowed(name string) bool {
	// Explicit deny takes precedence
	if p.Denied[name] {
		return false
	}

	// Explicit allow
	if p.Allowed[name] {
		return true
	}

	// Default behavior
	if p.DenyAll {
		return false
	}
	if p.AllowAll {
		return true
	}

	// Default: deny if not explicitly allowed
	return false
}

// Executor handles tool execution with policy enforcement, input validation,
// and duplicate-call guarding.
type Executor struct {
	registry *Registry
	policy   *Policy
	guard    *Guard
}

// NewExecutor creates a new executor with the given registry and policy.
func NewExecutor(registry *Registry, policy *Policy) *Executor {
	if policy == nil {
		policy = AllowAllPolicy()
	}
	return &Executor{
		registry: registry,
		policy:   policy,
		guard:    DefaultGuard(),
	}
}

// Execute runs a tool if allowed by policy. Domain failures come back as
// error results; the error return is reserved for host-level problems such
// as unknown tool names.
func (e *Executor) Execute(ctx context.Context, name string, input map[string]any) (*Result, error) {
	tool := e.registry.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	if !e.policy.IsAllowed(tool.Name) {
		return nil, fmt.Errorf("tool %s is not allowed by policy", name)
	}

	if tool.Execute == nil {
		return nil, fmt.Errorf("tool %s has no local executor", name)
	}

	log := zerolog.Ctx(ctx).With().
		Str("tool", tool.Name).
		Str("invocation_id", xid.New().String()).
		Logger()
	ctx = log.WithContext(ctx)

	if schema, ok := tool.InputSchema.(map[string]any); ok {
		if err := ValidateInput(input, schema); err != nil {
			return ErrorResult(tool.Name, err.Error()), nil
		}
	}

	start := time.Now()
	result, err := tool.Execute(ctx, input)
	if err != nil {
		log.Err(err).Dur("took", time.Since(start)).Msg("Tool execution failed")
		return nil, fmt.Errorf("executing %s: %w", tool.Name, err)
	}

	log.Debug().
		Dur("took", time.Since(start)).
		Str("status", string(result.Status)).
		Msg("Tool executed")
	return result, nil
}

// ExecuteWithID runs a tool with call ID tracking via the guard. The call ID
// deduplicates retried requests; pass "" to have one generated.
func (e *Executor) ExecuteWithID(ctx context.Context, callID, name string, input map[string]any) (*Result, error) {
	if callID == "" {
		callID = uuid.NewString()
	}
	if !e.guard.Register(callID, name, input) {
		return nil, fmt.Errorf("duplicate tool call: %s", callID)
	}
	defer e.guard.Complete(callID)

	return e.Execute(ctx, name, input)
}

// CanExecute checks if a tool can be executed (exists and is allowed).
// Policies are keyed by canonical names, so aliases resolve first.
func (e *Executor) CanExecute(name string) bool {
	tool := e.registry.Get(name)
	if tool == nil {
		return false
	}
	return e.policy.IsAllowed(tool.Name)
}

// AllowedTools returns all tools that are allowed by the policy.
func (e *Executor) AllowedTools() []*Tool {
	var allowed []*Tool
	for _, tool := range e.registry.All() {
		if e.policy.IsAllowed(tool.Name) {
			allowed = append(allowed, tool)
		}
	}
	return allowed
}

// AllowedToolInfos returns info about allowed tools.
func (e *Executor) AllowedToolInfos() []ToolInfo {
	var infos []ToolInfo
	for _, tool := range e.AllowedTools() {
		infos = append(infos, ToolInfo{
			Name:        tool.Name,
			Description: tool.Description,
			Type:        tool.Type,
			Group:       tool.Group,
			Enabled:     true,
		})
	}
	return infos
}

// Guard returns the underlying guard, for stale-call cleanup loops.
func (e *Executor) Guard() *Guard {
	return e.guard
}
